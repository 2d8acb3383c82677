package geocode

import "errors"

var (
	// ErrGeocoderRequired is returned when a reverse geocoder is not provided.
	ErrGeocoderRequired = errors.New("reverse geocoder required")

	// ErrInvalidCoordinates is returned for a coordinate pair that is not
	// a "lat,lon" string.
	ErrInvalidCoordinates = errors.New("invalid coordinate pair")
)
