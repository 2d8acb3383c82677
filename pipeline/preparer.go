package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/geosift/geosift/ai"
	"github.com/geosift/geosift/core"
	"github.com/panjf2000/ants/v2"
)

const defaultEncodeBatchSize = 64

// Preparer cleans raw search records and derives per-record features:
// pairwise embedding-similarity scores between the configured text fields and
// statistics over the all_queries list.
type Preparer struct {
	embedder  ai.Embedder
	params    Params
	keep      map[string]bool
	pool      *ants.Pool
	batchSize int
	logger    *slog.Logger
}

// PreparerOption configures a Preparer.
type PreparerOption func(*Preparer) error

// WithPoolSize sets the worker pool size for concurrent embedding batches.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) PreparerOption {
	return func(p *Preparer) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithEncodeBatchSize sets how many rows are embedded per batch call.
func WithEncodeBatchSize(size int) PreparerOption {
	return func(p *Preparer) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithPreparerLogger sets a custom logger.
// Default is slog.Default().
func WithPreparerLogger(logger *slog.Logger) PreparerOption {
	return func(p *Preparer) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPreparer creates a new record preparer.
func NewPreparer(embedder ai.Embedder, params Params, opts ...PreparerOption) (*Preparer, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	keep := make(map[string]bool, len(params.Cols))
	for _, col := range params.Cols {
		keep[col] = true
	}

	p := &Preparer{
		embedder:  embedder,
		params:    params,
		keep:      keep,
		pool:      pool,
		batchSize: defaultEncodeBatchSize,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Release releases the embedding worker pool.
// The preparer should not be used after calling Release.
func (p *Preparer) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Prepare cleans the raw records and returns the enriched table.
//
// Rows with an unparseable poi_proba are dropped and logged, never coerced to
// a default. Rows whose normalized query is exactly "home" or "work" are
// excluded. Null text fields are skipped during encoding and their similarity
// scores left undefined. Intermediate embedding vectors are not retained on
// the output.
func (p *Preparer) Prepare(ctx context.Context, raw []*core.SearchRecord) ([]*core.EnrichedRecord, error) {
	p.logger.Info("count on raw data", "rows", len(raw))

	enriched := make([]*core.EnrichedRecord, 0, len(raw))
	malformed := 0
	for _, rec := range raw {
		proba, err := core.ParseProbability(rec.PoiProba)
		if err != nil {
			p.logger.Warn("dropping row with malformed probability", "query", rec.Query, "err", err)
			malformed++
			continue
		}

		query := core.NormalizeQuery(rec.Query)
		if query == "home" || query == "work" {
			continue
		}

		enriched = append(enriched, p.newRow(rec, query, proba))
	}

	if malformed > 0 {
		p.logger.Info("count after dropping malformed probabilities", "rows", len(raw)-malformed)
	}
	p.logger.Info("count after removing home and work", "rows", len(enriched))

	if err := p.scoreSimilarities(ctx, enriched); err != nil {
		return nil, err
	}

	for _, row := range enriched {
		row.NumAllQueries = len(row.AllQueries)
		row.NumCharAllQueries, row.NumCommaAllQueries, row.NumWordsAllQueries = queryListStats(row.AllQueries)
	}

	return enriched, nil
}

// newRow projects a raw record onto the retained columns. Optional payload
// columns absent from the keep set are left empty on the enriched row.
func (p *Preparer) newRow(rec *core.SearchRecord, query string, proba float64) *core.EnrichedRecord {
	row := &core.EnrichedRecord{
		Query:      query,
		Success:    rec.Success,
		PoiProba:   proba,
		Similarity: make(map[string]float32),
	}
	if p.keep[ColAllQueries] {
		row.AllQueries = rec.AllQueries
	}
	if p.keep[ColLocation] {
		row.Location = rec.Location
	}
	if p.keep[ColUserLatLon] {
		row.UserLatLon = rec.UserLatLon
	}
	if p.keep[ColPoiName] {
		row.PoiName = rec.PoiName
	}
	return row
}

// scoreSimilarities encodes each configured field and scores every non-reference
// field against the reference. Vectors are kept only for the duration of this
// call; the enriched table carries similarity scores, not embeddings.
func (p *Preparer) scoreSimilarities(ctx context.Context, rows []*core.EnrichedRecord) error {
	vectors := make(map[string][][]float32, len(p.params.ColsToEncode))
	for _, col := range p.params.ColsToEncode {
		encoded, err := p.encodeColumn(ctx, rows, col)
		if err != nil {
			return fmt.Errorf("encoding column %s: %w", col, err)
		}
		vectors[col] = encoded
	}

	ref := p.params.ColsToEncode[0]
	for _, col := range p.params.ColsToEncode[1:] {
		simCol := SimColumn(ref, col)
		for i, row := range rows {
			a, b := vectors[ref][i], vectors[col][i]
			if a == nil || b == nil {
				continue // null field: similarity stays undefined
			}
			sim, err := core.CosineSimilarity(a, b)
			if err != nil {
				p.logger.Warn("similarity undefined", "column", simCol, "query", row.Query, "err", err)
				continue
			}
			row.Similarity[simCol] = sim
		}
	}

	return nil
}

// encodeColumn embeds one text column for all rows, batching non-null values
// across the worker pool. The result is index-aligned with rows; nil marks a
// null value that was never submitted to the embedder.
func (p *Preparer) encodeColumn(ctx context.Context, rows []*core.EnrichedRecord, col string) ([][]float32, error) {
	vectors := make([][]float32, len(rows))

	indices := make([]int, 0, len(rows))
	texts := make([]string, 0, len(rows))
	for i, row := range rows {
		text, ok := encodeValue(row, col)
		if !ok {
			continue
		}
		indices = append(indices, i)
		texts = append(texts, text)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for start := 0; start < len(texts); start += p.batchSize {
		end := min(start+p.batchSize, len(texts))
		batchTexts := texts[start:end]
		batchIndices := indices[start:end]

		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			embeddings, err := p.embedder.EmbedTexts(ctx, batchTexts)
			if err == nil && len(embeddings) != len(batchTexts) {
				err = fmt.Errorf("embedding result mismatch: expected %d, received %d", len(batchTexts), len(embeddings))
			}
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			// Batches cover disjoint index ranges, so no lock is needed here.
			for j, embedding := range embeddings {
				vectors[batchIndices[j]] = embedding
			}
		})
		if err != nil {
			wg.Done()
			return nil, err
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}

// encodeValue extracts the value of an encodable column from a row.
// The second return is false for null (empty) values.
func encodeValue(row *core.EnrichedRecord, col string) (string, bool) {
	switch col {
	case ColQuery:
		return row.Query, row.Query != ""
	case ColPoiName:
		return row.PoiName, row.PoiName != ""
	}
	return "", false
}
