package provider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/geosift/geosift/ai"
	"github.com/geosift/geosift/core"
	"github.com/geosift/geosift/storage"
)

const (
	// Queries longer than this are truncated before embedding.
	maxQueryRunes = 512

	defaultCatalogTopK          = 10
	defaultCatalogMinSimilarity = float32(0.0)
)

// Catalog answers queries from the locally indexed POI catalog by embedding
// the query text and running vector search against stored entries.
type Catalog struct {
	embedder      ai.Embedder
	repository    storage.CatalogRepository
	topK          int
	minSimilarity float32
	logger        *slog.Logger
}

var _ SearchProvider = (*Catalog)(nil)

// CatalogOption configures a Catalog provider.
type CatalogOption func(*Catalog) error

// WithTopK sets the number of hits returned per query.
// Default is 10.
func WithTopK(topK int) CatalogOption {
	return func(c *Catalog) error {
		if topK > 0 {
			c.topK = topK
		}
		return nil
	}
}

// WithMinSimilarity sets the minimum similarity for a hit to be returned.
func WithMinSimilarity(minSimilarity float32) CatalogOption {
	return func(c *Catalog) error {
		c.minSimilarity = minSimilarity
		return nil
	}
}

// WithCatalogLogger sets a custom logger.
// Default is slog.Default().
func WithCatalogLogger(logger *slog.Logger) CatalogOption {
	return func(c *Catalog) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCatalog creates a catalog provider.
func NewCatalog(embedder ai.Embedder, repository storage.CatalogRepository, opts ...CatalogOption) (*Catalog, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if repository == nil {
		return nil, ErrRepositoryRequired
	}

	c := &Catalog{
		embedder:      embedder,
		repository:    repository,
		topK:          defaultCatalogTopK,
		minSimilarity: defaultCatalogMinSimilarity,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Search embeds the query and returns the top-k most similar catalog entries.
// Location bias options are ignored: the catalog has no notion of the
// caller's position.
func (c *Catalog) Search(ctx context.Context, query string, opts ...SearchOption) (*Results, error) {
	truncated := query
	if runes := []rune(truncated); len(runes) > maxQueryRunes {
		truncated = string(runes[:maxQueryRunes])
	}

	started := time.Now()
	vector, err := c.embedder.EmbedText(ctx, truncated)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	matches, err := c.repository.FindSimilar(ctx, vector, c.minSimilarity, c.topK)
	if err != nil {
		return nil, fmt.Errorf("searching catalog: %w", err)
	}

	items := make([]Result, 0, len(matches))
	for _, match := range matches {
		fields := map[string]any{"name": match.Entry.Name}
		for key, value := range match.Entry.Attrs {
			fields[key] = value
		}
		items = append(items, Result{
			Fields: fields,
			Score:  match.Score,
		})
	}

	c.logger.Debug("catalog search complete", "query", query, "hits", len(items))

	return &Results{
		Items: items,
		Total: len(items),
		Took:  time.Since(started),
		Query: query,
	}, nil
}

// IndexEntries embeds the names of the given entries that do not yet carry a
// vector and stores them in the catalog.
func (c *Catalog) IndexEntries(ctx context.Context, entries ...*core.CatalogEntry) ([]*core.CatalogEntry, error) {
	pending := make([]string, 0, len(entries))
	pendingIdx := make([]int, 0, len(entries))
	for i, entry := range entries {
		if len(entry.Vector) == 0 {
			pending = append(pending, entry.Name)
			pendingIdx = append(pendingIdx, i)
		}
	}

	if len(pending) > 0 {
		vectors, err := c.embedder.EmbedTexts(ctx, pending)
		if err != nil {
			return nil, fmt.Errorf("embedding catalog entries: %w", err)
		}
		for j, i := range pendingIdx {
			entries[i].Vector = core.NormalizeVector(vectors[j])
		}
	}

	return c.repository.AddEntries(ctx, entries...)
}
