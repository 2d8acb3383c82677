package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for catalog entries.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SearchRecord is one user search event as exported from the upstream search
// logs. Text fields use the empty string for null values; PoiProba is kept as
// the raw export string because the upstream uses a locale-dependent decimal
// separator.
type SearchRecord struct {
	Query      string
	AllQueries []string // all query variants seen for this record, in order
	Location   string   // raw structured-location payload, may be empty or malformed
	UserLatLon string   // "lat,lon" pair used for reverse geocoding
	PoiName    string   // candidate POI name found by the upstream search
	Success    bool     // outcome flag from the upstream search
	PoiProba   string   // confidence that the query denotes a POI, raw
}

// EnrichedRecord is a SearchRecord after cleaning plus derived features.
// Derived fields are pure functions of the base fields and are recomputed on
// every pipeline run, never mutated independently.
type EnrichedRecord struct {
	Query      string // normalized: lower-cased, trimmed
	AllQueries []string
	Location   string
	UserLatLon string
	PoiName    string
	Success    bool
	PoiProba   float64

	// Similarity holds one cosine score in [-1,1] per encoded field pair,
	// keyed "sim_<ref>_<other>". A missing key means the similarity is
	// undefined for that row (one of the fields was null).
	Similarity map[string]float32

	NumAllQueries      int
	NumCharAllQueries  []int
	NumCommaAllQueries []int
	NumWordsAllQueries []int
}

// Clone returns a deep copy of the record. Downstream stages that add columns
// work on clones so that earlier cohort views stay untouched.
func (r *EnrichedRecord) Clone() *EnrichedRecord {
	clone := *r
	clone.AllQueries = append([]string(nil), r.AllQueries...)
	clone.NumCharAllQueries = append([]int(nil), r.NumCharAllQueries...)
	clone.NumCommaAllQueries = append([]int(nil), r.NumCommaAllQueries...)
	clone.NumWordsAllQueries = append([]int(nil), r.NumWordsAllQueries...)
	if r.Similarity != nil {
		clone.Similarity = make(map[string]float32, len(r.Similarity))
		for k, v := range r.Similarity {
			clone.Similarity[k] = v
		}
	}
	return &clone
}

// ReconciledRecord is an EnrichedRecord cross-checked against a reverse
// geocoder. ReverseLocation holds the candidate place name extracted from the
// raw response; OSMBetter reports whether it matched the query better than
// the original POI guess did.
type ReconciledRecord struct {
	*EnrichedRecord

	ReverseGeocode      string // raw reverse-geocoder response
	LocationCoordinates string // "lat,lon" from the parsed location payload
	ReverseLocation     string // first comma-delimited segment, trimmed
	CountryQuery        string // last comma-delimited segment, trimmed
	SimQueryReverse     float32
	OSMBetter           bool
}

// Location is a parsed structured-location payload.
type Location struct {
	Lat float64
	Lon float64
}

// Coordinates renders the location as a "lat,lon" display string.
func (l Location) Coordinates() string {
	return strconv.FormatFloat(l.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(l.Lon, 'f', -1, 64)
}

// CatalogEntry is one indexed place in the internal POI catalog.
type CatalogEntry struct {
	Id         ID
	Name       string
	Attrs      map[string]string // free-form attributes (address, category, ...)
	Vector     []float32         // embedding of the entry name, unit-normalized
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// CatalogMatch is a catalog entry returned from vector similarity search.
type CatalogMatch struct {
	Entry *CatalogEntry
	Score float32
}
