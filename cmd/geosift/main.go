// Copyright 2026 Geosift Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/geosift/geosift"
	"github.com/geosift/geosift/ai"
	"github.com/geosift/geosift/ai/openai"
	"github.com/geosift/geosift/pipeline"
	"github.com/geosift/geosift/provider"
	"github.com/geosift/geosift/storage/badger"
	"github.com/urfave/cli/v2"
)

var providers = provider.NewRegistry()

func main() {
	app := &cli.App{
		Name:  "geosift",
		Usage: "Classify search queries as points of interest or addresses",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the full pipeline over an input table",
				Action: runCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to the input CSV of search records",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "output-dir",
						Aliases:  []string{"o"},
						Usage:    "Directory for cohort and reconciliation CSVs",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Agreement threshold for the prior POI classifier",
						Value: 0.5,
					},
					&cli.StringFlag{
						Name:  "country",
						Usage: "Country name reconciled rows must geocode into",
						Value: "United States",
					},
					&cli.DurationFlag{
						Name:  "min-delay",
						Usage: "Minimum delay between reverse-geocode calls",
						Value: 1 * time.Second,
					},
					&cli.StringFlag{
						Name:  "user-agent",
						Usage: "User-Agent for the Nominatim geocoder",
						Value: "geosift/1.0",
					},
				},
			},
			{
				Name:   "index",
				Usage:  "Embed and load catalog entries into the local POI catalog",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB catalog directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to the catalog CSV (name column plus attributes)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Query the web or catalog search provider",
				Action:    searchCommand,
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "provider",
						Usage: "Search backend: web or catalog",
						Value: "catalog",
					},
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB catalog directory (catalog provider)",
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "Web search API key (web provider)",
						EnvVars: []string{"GEOSIFT_SEARCH_KEY"},
					},
					&cli.StringFlag{
						Name:  "lat",
						Usage: "Latitude for location-biased web search",
					},
					&cli.StringFlag{
						Name:  "lon",
						Usage: "Longitude for location-biased web search",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL (catalog provider)",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name (catalog provider)",
						Value: "embeddinggemma",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runCommand(c *cli.Context) error {
	ctx := context.Background()

	records, err := readSearchRecords(c.String("input"))
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	outputDir := c.String("output-dir")
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	params := pipeline.DefaultParams()
	params.PoiProbaThreshold = c.Float64("threshold")
	params.Country = c.String("country")
	params.MinDelay = c.Duration("min-delay")
	if err := params.Validate(); err != nil {
		return err
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	p, err := geosift.NewPipeline(
		geosift.WithAIConfig(aiConfig),
		geosift.WithParams(params),
		geosift.WithUserAgent(c.String("user-agent")),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Input: %s (%d records)\n", c.String("input"), len(records))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	report, err := p.Run(ctx, records)
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	writer := newEnrichedWriter(params)
	if err := writer.writeCohorts(outputDir, report.Cohorts); err != nil {
		return err
	}
	if err := writer.writeReconciled(outputDir, params, report.Reconciled); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Wrote cohorts and reconciliation tables to %s\n", outputDir)
	return nil
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	entries, err := readCatalogEntries(c.String("input"))
	if err != nil {
		return fmt.Errorf("failed to read catalog input: %w", err)
	}

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open catalog database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewCatalogRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	catalog, err := provider.NewCatalog(embedder, repo)
	if err != nil {
		return fmt.Errorf("failed to create catalog provider: %w", err)
	}

	if _, err := catalog.IndexEntries(ctx, entries...); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	total, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Indexed %d entries (%d total in catalog)\n", len(entries), total)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query argument is required")
	}

	var opts []provider.SearchOption
	if c.String("lat") != "" && c.String("lon") != "" {
		opts = append(opts, provider.WithLocationBias(c.String("lat"), c.String("lon")))
	}

	p, err := buildProvider(c)
	if err != nil {
		return err
	}

	results, err := p.Search(ctx, query, opts...)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if results == nil {
		fmt.Println("No results container in response.")
		return nil
	}

	fmt.Printf("%d hits (total %d, took %s)\n", len(results.Items), results.Total, results.Took)
	for i, item := range results.Items {
		fmt.Printf("%2d. score=%.4f %v\n", i+1, item.Score, item.Fields)
	}
	return nil
}

// buildProvider resolves the requested backend through the registry so that
// repeated lookups with the same configuration share one instance.
func buildProvider(c *cli.Context) (provider.SearchProvider, error) {
	switch c.String("provider") {
	case "web":
		apiKey := c.String("api-key")
		if apiKey == "" {
			return nil, fmt.Errorf("api-key is required for the web provider")
		}
		return providers.Get("web|"+apiKey, func() (provider.SearchProvider, error) {
			return provider.NewWebSearch(apiKey)
		})

	case "catalog":
		dbPath := c.String("db")
		if dbPath == "" {
			return nil, fmt.Errorf("db is required for the catalog provider")
		}
		aiConfig := ai.NewConfig(
			ai.WithEmbeddingHost(c.String("embedding-host")),
			ai.WithEmbeddingModel(c.String("embedding-model")),
		)
		if err := aiConfig.Validate(); err != nil {
			return nil, fmt.Errorf("invalid AI configuration: %w", err)
		}
		return providers.Get("catalog|"+dbPath+"|"+aiConfig.Key(), func() (provider.SearchProvider, error) {
			backend, err := badger.OpenBackend(dbPath, false)
			if err != nil {
				return nil, err
			}
			repo, err := badger.NewCatalogRepository(backend)
			if err != nil {
				backend.Close()
				return nil, err
			}
			embedder, err := openai.NewEmbedder(aiConfig)
			if err != nil {
				repo.Close()
				backend.Close()
				return nil, err
			}
			return provider.NewCatalog(embedder, repo)
		})

	default:
		return nil, fmt.Errorf("unknown provider %q: must be web or catalog", c.String("provider"))
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
