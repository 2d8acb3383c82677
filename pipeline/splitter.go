package pipeline

import (
	"log/slog"

	"github.com/geosift/geosift/core"
)

// Cohorts are the four named views over the enriched table. The slices share
// row pointers with the input; the split itself never mutates a row.
//
// FailPOI and SuccessAddr are mutually exclusive by construction: one
// requires success=false and the other success=true. Rows with poi_proba
// exactly at the threshold (or its complement) land in neither thresholded
// cohort; the ambiguous confidence band is excluded from both on purpose.
type Cohorts struct {
	Fail        []*core.EnrichedRecord // success == false
	FailPOI     []*core.EnrichedRecord // fail and poi_proba > tau
	Success     []*core.EnrichedRecord // success == true
	SuccessAddr []*core.EnrichedRecord // success and poi_proba < 1-tau
}

// Splitter partitions an enriched table by outcome flag and probability
// threshold.
type Splitter struct {
	threshold float64
	logger    *slog.Logger
}

// SplitterOption configures a Splitter.
type SplitterOption func(*Splitter)

// WithSplitterLogger sets a custom logger.
// Default is slog.Default().
func WithSplitterLogger(logger *slog.Logger) SplitterOption {
	return func(s *Splitter) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewSplitter creates a splitter for the given probability threshold tau.
func NewSplitter(threshold float64, opts ...SplitterOption) (*Splitter, error) {
	if threshold < 0 || threshold > 1 {
		return nil, ErrInvalidThreshold
	}
	s := &Splitter{
		threshold: threshold,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Split computes the four cohorts. Threshold comparisons are strict.
func (s *Splitter) Split(records []*core.EnrichedRecord) Cohorts {
	var cohorts Cohorts
	for _, rec := range records {
		if rec.Success {
			cohorts.Success = append(cohorts.Success, rec)
			if rec.PoiProba < 1-s.threshold {
				cohorts.SuccessAddr = append(cohorts.SuccessAddr, rec)
			}
		} else {
			cohorts.Fail = append(cohorts.Fail, rec)
			if rec.PoiProba > s.threshold {
				cohorts.FailPOI = append(cohorts.FailPOI, rec)
			}
		}
	}

	s.logger.Info("count for failing searches", "rows", len(cohorts.Fail))
	s.logger.Info("count for failing searches potentially POIs", "rows", len(cohorts.FailPOI))
	s.logger.Info("count for success searches clearly not POIs", "rows", len(cohorts.SuccessAddr))

	return cohorts
}
