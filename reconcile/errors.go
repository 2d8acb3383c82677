package reconcile

import "errors"

var (
	// ErrGeocoderRequired is returned when a reverse geocoder is not provided.
	ErrGeocoderRequired = errors.New("reverse geocoder required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")
)
