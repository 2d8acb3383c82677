package provider

import (
	"context"
	"time"
)

// Result is a single search hit in the uniform shape shared by all providers.
// Fields carries the backend's document fields ("url", "name", catalog
// attributes); Score is the backend's relevance score when it has one.
type Result struct {
	Fields map[string]any
	Score  float32
}

// Results is the outcome of a single provider query.
//
// A nil *Results with a nil error means the upstream response carried no
// results container at all. That is distinct from a non-nil Results with zero
// Items, which means the backend answered but nothing matched.
type Results struct {
	Items []Result
	Total int
	Took  time.Duration
	Query string
}

// searchOptions holds per-call settings.
type searchOptions struct {
	latitude  string
	longitude string
}

// SearchOption configures a single Search call.
type SearchOption func(*searchOptions)

// WithLocationBias biases results toward the given coordinates.
// Providers that cannot use a location ignore it.
func WithLocationBias(latitude, longitude string) SearchOption {
	return func(o *searchOptions) {
		o.latitude = latitude
		o.longitude = longitude
	}
}

func applyOptions(opts []SearchOption) searchOptions {
	var o searchOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// SearchProvider answers free-text queries about points of interest.
type SearchProvider interface {
	Search(ctx context.Context, query string, opts ...SearchOption) (*Results, error)
}
