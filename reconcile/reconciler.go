package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/geosift/geosift/ai"
	"github.com/geosift/geosift/core"
	"github.com/geosift/geosift/geocode"
	"github.com/geosift/geosift/pipeline"
)

// Rows whose stringified location payload is this short carry no usable
// structured location.
const minLocationPayloadLen = 10

// Reconciler re-labels low-confidence failed searches using reverse-geocoded
// place names.
type Reconciler struct {
	geocoder geocode.ReverseGeocoder
	embedder ai.Embedder
	params   pipeline.Params
	logger   *slog.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// NewReconciler creates a reconciler. The geocoder is expected to be rate
// limited already (see geocode.RateLimited); the reconciler invokes it
// strictly sequentially, one call per row.
func NewReconciler(geocoder geocode.ReverseGeocoder, embedder ai.Embedder, params pipeline.Params, opts ...Option) (*Reconciler, error) {
	if geocoder == nil {
		return nil, ErrGeocoderRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	r := &Reconciler{
		geocoder: geocoder,
		embedder: embedder,
		params:   params,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Outcome holds the two reconciled views: the full surviving cohort and the
// subset where the reverse-geocoded name beat the original POI guess.
type Outcome struct {
	All       []*core.ReconciledRecord
	OSMBetter []*core.ReconciledRecord
}

// Reconcile runs the fail_poi cohort through reverse-geocode cross-validation.
//
// Rows are dropped, with the count logged after each filter, when the
// location payload is missing or malformed, when the reverse-geocoded
// candidate name starts with a digit (house numbers and postal codes are not
// POI names), or when the response's country does not match the configured
// target. A geocoder outage aborts the stage; a per-row geocode failure only
// drops that row.
func (r *Reconciler) Reconcile(ctx context.Context, failPOI []*core.EnrichedRecord) (*Outcome, error) {
	rows, err := r.locateRows(failPOI)
	if err != nil {
		return nil, err
	}

	rows, err = r.reverseGeocodeRows(ctx, rows)
	if err != nil {
		return nil, err
	}

	if err := r.scoreRows(ctx, rows); err != nil {
		return nil, err
	}

	rows = r.filterByCountry(rows)

	outcome := &Outcome{All: rows}
	priorCol := pipeline.SimColumn(r.params.ColsToEncode[0], pipeline.ColPoiName)
	for _, row := range rows {
		prior, ok := row.Similarity[priorCol]
		// An undefined prior similarity never loses to the geocoder;
		// the comparison is simply not in the geocoder's favor.
		row.OSMBetter = ok && row.SimQueryReverse > prior
		if row.OSMBetter {
			outcome.OSMBetter = append(outcome.OSMBetter, row)
		}
	}
	r.logger.Info("count for better reverse geocode than poi name", "rows", len(outcome.OSMBetter))

	return outcome, nil
}

// locateRows drops rows without a usable structured location and attaches the
// parsed "lat,lon" trace string. Each surviving row is cloned so the enriched
// table held by earlier stages stays untouched.
func (r *Reconciler) locateRows(failPOI []*core.EnrichedRecord) ([]*core.ReconciledRecord, error) {
	rows := make([]*core.ReconciledRecord, 0, len(failPOI))
	for _, rec := range failPOI {
		if len(rec.Location) <= minLocationPayloadLen {
			continue
		}
		loc, err := core.ParseLocation(rec.Location)
		if err != nil {
			r.logger.Warn("dropping row with malformed location", "query", rec.Query, "err", err)
			continue
		}
		rows = append(rows, &core.ReconciledRecord{
			EnrichedRecord:      rec.Clone(),
			LocationCoordinates: loc.Coordinates(),
		})
	}
	r.logger.Info("count after removing rows without structured location", "rows", len(rows))
	return rows, nil
}

// reverseGeocodeRows fetches one place description per row, sequentially, and
// extracts the candidate place name. Candidates that start with a digit are
// discarded.
func (r *Reconciler) reverseGeocodeRows(ctx context.Context, rows []*core.ReconciledRecord) ([]*core.ReconciledRecord, error) {
	kept := make([]*core.ReconciledRecord, 0, len(rows))
	for _, row := range rows {
		response, err := r.geocoder.Reverse(ctx, row.UserLatLon)
		if err != nil {
			if errors.Is(err, core.ErrProviderUnavailable) || ctx.Err() != nil {
				return nil, fmt.Errorf("reverse geocoding: %w", err)
			}
			r.logger.Warn("dropping row that failed reverse geocoding", "query", row.Query, "err", err)
			continue
		}

		row.ReverseGeocode = response
		row.ReverseLocation = firstSegment(response)
		row.CountryQuery = lastSegment(response)

		if row.ReverseLocation == "" || startsWithDigit(row.ReverseLocation) {
			continue
		}
		kept = append(kept, row)
	}
	r.logger.Info("count after removing reverse geocoding starting with number", "rows", len(kept))
	return kept, nil
}

// scoreRows batch-encodes queries and candidate names and attaches the
// similarity score. Rows with a degenerate embedding are scored undefined and
// dropped from neither view here; they simply never win the osm_better label.
func (r *Reconciler) scoreRows(ctx context.Context, rows []*core.ReconciledRecord) error {
	if len(rows) == 0 {
		return nil
	}

	queries := make([]string, len(rows))
	candidates := make([]string, len(rows))
	for i, row := range rows {
		queries[i] = row.Query
		candidates[i] = row.ReverseLocation
	}

	queryVectors, err := r.embedder.EmbedTexts(ctx, queries)
	if err != nil {
		return fmt.Errorf("encoding queries: %w", err)
	}
	candidateVectors, err := r.embedder.EmbedTexts(ctx, candidates)
	if err != nil {
		return fmt.Errorf("encoding reverse-geocoded names: %w", err)
	}
	if len(queryVectors) != len(rows) || len(candidateVectors) != len(rows) {
		return fmt.Errorf("embedding result mismatch: expected %d, received %d/%d",
			len(rows), len(queryVectors), len(candidateVectors))
	}

	simCol := pipeline.SimColumn(r.params.ColsToEncode[0], r.params.ColRevGeo)
	for i, row := range rows {
		sim, err := core.CosineSimilarity(queryVectors[i], candidateVectors[i])
		if err != nil {
			r.logger.Warn("similarity undefined for reverse-geocoded name", "query", row.Query, "err", err)
			continue
		}
		row.SimQueryReverse = sim
		// A nil map is a legal all-undefined record.
		if row.Similarity == nil {
			row.Similarity = make(map[string]float32, 1)
		}
		row.Similarity[simCol] = sim
	}
	return nil
}

// filterByCountry keeps rows whose last response segment matches the target
// country exactly; records outside it are not comparable under the same
// geocoding conventions.
func (r *Reconciler) filterByCountry(rows []*core.ReconciledRecord) []*core.ReconciledRecord {
	r.logger.Info("count before filtering by country", "rows", len(rows))
	kept := make([]*core.ReconciledRecord, 0, len(rows))
	for _, row := range rows {
		if row.CountryQuery == r.params.Country {
			kept = append(kept, row)
		}
	}
	r.logger.Info("count after filtering by country", "rows", len(kept))
	return kept
}

func firstSegment(response string) string {
	segment, _, _ := strings.Cut(response, ",")
	return strings.TrimSpace(segment)
}

func lastSegment(response string) string {
	idx := strings.LastIndex(response, ",")
	return strings.TrimSpace(response[idx+1:])
}

func startsWithDigit(s string) bool {
	for _, r := range s {
		return unicode.IsDigit(r)
	}
	return false
}
