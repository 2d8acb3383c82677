// Package geocode provides reverse geocoding: converting a coordinate pair
// into a human-readable place description.
//
// The external service is rate limited. Callers wrap a client in RateLimited
// to enforce the configured minimum inter-call delay; the limit is hard, not
// advisory.
package geocode
