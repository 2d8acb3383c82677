package pipeline

import (
	"fmt"
	"time"
)

// Column names of the input table. ColsToEncode and Cols refer to these.
const (
	ColQuery      = "query"
	ColAllQueries = "all_queries"
	ColLocation   = "location"
	ColUserLatLon = "user_latlon"
	ColPoiName    = "poi_name"
	ColSuccess    = "success"
	ColPoiProba   = "poi_proba"
)

// Params is the configuration surface shared by the pipeline stages.
type Params struct {
	// Cols lists the columns retained after cleaning. Optional payload
	// columns not listed here are cleared on the enriched output.
	Cols []string

	// ColsToEncode is the ordered list of text fields to embed; the first
	// entry is the reference field every other entry is scored against.
	ColsToEncode []string

	// PoiProbaThreshold is tau: fail_poi requires poi_proba > tau and
	// success_addr requires poi_proba < 1-tau, both strict.
	PoiProbaThreshold float64

	// ColRevGeo names the reverse-geocoded candidate place-name column.
	ColRevGeo string

	// Country is the exact-match target for the country filter.
	Country string

	// MinDelay is the hard minimum delay between reverse-geocode calls.
	MinDelay time.Duration
}

// DefaultParams returns the parameters used by the production batch runs.
func DefaultParams() Params {
	return Params{
		Cols:              []string{ColQuery, ColAllQueries, ColLocation, ColUserLatLon, ColPoiName, ColSuccess, ColPoiProba},
		ColsToEncode:      []string{ColQuery, ColPoiName},
		PoiProbaThreshold: 0.5,
		ColRevGeo:         "reverse_location",
		Country:           "United States",
		MinDelay:          time.Second,
	}
}

// Validate checks the parameter set for internal consistency.
func (p Params) Validate() error {
	if len(p.ColsToEncode) < 2 {
		return fmt.Errorf("%w: need a reference column and at least one other", ErrNotEnoughEncodeColumns)
	}
	for _, col := range p.ColsToEncode {
		if !encodable(col) {
			return fmt.Errorf("%w: %q", ErrUnknownEncodeColumn, col)
		}
	}
	if p.PoiProbaThreshold < 0 || p.PoiProbaThreshold > 1 {
		return fmt.Errorf("%w: threshold %v outside [0,1]", ErrInvalidThreshold, p.PoiProbaThreshold)
	}
	if p.ColRevGeo == "" {
		return fmt.Errorf("%w: ColRevGeo is empty", ErrInvalidParams)
	}
	if p.MinDelay < 0 {
		return fmt.Errorf("%w: negative MinDelay", ErrInvalidParams)
	}
	return nil
}

// SimColumn returns the derived similarity column name for a field pair,
// e.g. "sim_query_poi_name".
func SimColumn(ref, other string) string {
	return "sim_" + ref + "_" + other
}

func encodable(col string) bool {
	return col == ColQuery || col == ColPoiName
}
