package geocode

import "context"

// ReverseGeocoder converts a "lat,lon" coordinate pair into a free-text
// place description.
type ReverseGeocoder interface {
	// Reverse returns the place description for the given coordinates.
	// Failures of the upstream service wrap core.ErrProviderUnavailable.
	Reverse(ctx context.Context, latlon string) (string, error)
}

// ReverseGeocoderFunc adapts a function to the ReverseGeocoder interface.
type ReverseGeocoderFunc func(ctx context.Context, latlon string) (string, error)

// Reverse implements ReverseGeocoder.
func (f ReverseGeocoderFunc) Reverse(ctx context.Context, latlon string) (string, error) {
	return f(ctx, latlon)
}
