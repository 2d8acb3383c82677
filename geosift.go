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


// Package geosift classifies search queries as points of interest or
// addresses by enriching raw query logs with embeddings, splitting them into
// agreement cohorts against a prior classifier, and reconciling the
// disagreements against reverse geocoding.
package geosift

import (
	"context"
	"log/slog"

	"github.com/geosift/geosift/ai"
	"github.com/geosift/geosift/ai/openai"
	"github.com/geosift/geosift/core"
	"github.com/geosift/geosift/geocode"
	"github.com/geosift/geosift/pipeline"
	"github.com/geosift/geosift/reconcile"
)

const defaultUserAgent = "geosift/1.0"

// Pipeline wires the enrichment, split and reconciliation stages around a
// shared embedder and geocoder.
type Pipeline struct {
	embedder   ai.Embedder
	geocoder   geocode.ReverseGeocoder
	params     pipeline.Params
	preparer   *pipeline.Preparer
	splitter   *pipeline.Splitter
	reconciler *reconcile.Reconciler
	logger     *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*pipelineOptions)

type pipelineOptions struct {
	aiConfig  *ai.Config
	params    pipeline.Params
	embedder  ai.Embedder
	geocoder  geocode.ReverseGeocoder
	userAgent string
	logger    *slog.Logger
}

// WithAIConfig sets the embedding service configuration.
// Ignored when a pre-built embedder is supplied via WithEmbedder.
func WithAIConfig(config *ai.Config) PipelineOption {
	return func(o *pipelineOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithParams sets the pipeline parameters.
// Default is pipeline.DefaultParams().
func WithParams(params pipeline.Params) PipelineOption {
	return func(o *pipelineOptions) {
		o.params = params
	}
}

// WithEmbedder injects a pre-built embedder instead of constructing one from
// the AI configuration.
func WithEmbedder(embedder ai.Embedder) PipelineOption {
	return func(o *pipelineOptions) {
		o.embedder = embedder
	}
}

// WithGeocoder injects a reverse geocoder. Default is a rate-limited
// Nominatim client honoring the params' minimum inter-call delay.
func WithGeocoder(geocoder geocode.ReverseGeocoder) PipelineOption {
	return func(o *pipelineOptions) {
		o.geocoder = geocoder
	}
}

// WithUserAgent sets the User-Agent for the default Nominatim geocoder.
func WithUserAgent(userAgent string) PipelineOption {
	return func(o *pipelineOptions) {
		if userAgent != "" {
			o.userAgent = userAgent
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(o *pipelineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewPipeline creates a pipeline with the given options.
func NewPipeline(opts ...PipelineOption) (*Pipeline, error) {
	options := &pipelineOptions{
		aiConfig:  ai.DefaultConfig(),
		params:    pipeline.DefaultParams(),
		userAgent: defaultUserAgent,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	embedder := options.embedder
	if embedder == nil {
		var err error
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	geocoder := options.geocoder
	if geocoder == nil {
		nominatim, err := geocode.NewNominatim(options.userAgent)
		if err != nil {
			return nil, err
		}
		geocoder, err = geocode.NewRateLimited(nominatim, options.params.MinDelay)
		if err != nil {
			return nil, err
		}
	}

	preparer, err := pipeline.NewPreparer(embedder, options.params,
		pipeline.WithPreparerLogger(options.logger))
	if err != nil {
		return nil, err
	}

	splitter, err := pipeline.NewSplitter(options.params.PoiProbaThreshold,
		pipeline.WithSplitterLogger(options.logger))
	if err != nil {
		return nil, err
	}

	reconciler, err := reconcile.NewReconciler(geocoder, embedder, options.params,
		reconcile.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		embedder:   embedder,
		geocoder:   geocoder,
		params:     options.params,
		preparer:   preparer,
		splitter:   splitter,
		reconciler: reconciler,
		logger:     options.logger,
	}, nil
}

// Prepare normalizes and enriches raw search records.
func (p *Pipeline) Prepare(ctx context.Context, raw []*core.SearchRecord) ([]*core.EnrichedRecord, error) {
	return p.preparer.Prepare(ctx, raw)
}

// Split partitions enriched records into agreement cohorts.
func (p *Pipeline) Split(records []*core.EnrichedRecord) pipeline.Cohorts {
	return p.splitter.Split(records)
}

// Reconcile validates fail-POI rows against reverse geocoding.
func (p *Pipeline) Reconcile(ctx context.Context, failPOI []*core.EnrichedRecord) (*reconcile.Outcome, error) {
	return p.reconciler.Reconcile(ctx, failPOI)
}

// Report is the outcome of a full pipeline run.
type Report struct {
	Cohorts    pipeline.Cohorts
	Reconciled *reconcile.Outcome
}

// Run executes the full flow: prepare, split, then reconcile the fail-POI
// cohort against reverse geocoding.
func (p *Pipeline) Run(ctx context.Context, raw []*core.SearchRecord) (*Report, error) {
	enriched, err := p.Prepare(ctx, raw)
	if err != nil {
		return nil, err
	}

	cohorts := p.Split(enriched)

	reconciled, err := p.Reconcile(ctx, cohorts.FailPOI)
	if err != nil {
		return nil, err
	}

	p.logger.Info("pipeline run complete",
		"input", len(raw),
		"enriched", len(enriched),
		"failPOI", len(cohorts.FailPOI),
		"osmBetter", len(reconciled.OSMBetter))

	return &Report{
		Cohorts:    cohorts,
		Reconciled: reconciled,
	}, nil
}
