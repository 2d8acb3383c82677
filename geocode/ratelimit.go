package geocode

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimited wraps a ReverseGeocoder with a hard minimum inter-call delay.
// Calls block until the delay since the previous call has elapsed, regardless
// of the order rows arrive in.
type RateLimited struct {
	inner   ReverseGeocoder
	limiter *rate.Limiter
}

// NewRateLimited creates a rate-limited reverse geocoder allowing one call
// per minDelay. A zero or negative delay disables throttling.
func NewRateLimited(inner ReverseGeocoder, minDelay time.Duration) (*RateLimited, error) {
	if inner == nil {
		return nil, ErrGeocoderRequired
	}
	limit := rate.Inf
	if minDelay > 0 {
		limit = rate.Every(minDelay)
	}
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

// Reverse waits for the rate limiter, then delegates to the wrapped geocoder.
func (r *RateLimited) Reverse(ctx context.Context, latlon string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.inner.Reverse(ctx, latlon)
}
