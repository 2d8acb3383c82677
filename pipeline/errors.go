package pipeline

import "errors"

var (
	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrNotEnoughEncodeColumns is returned when ColsToEncode has fewer
	// than two entries.
	ErrNotEnoughEncodeColumns = errors.New("not enough encode columns")

	// ErrUnknownEncodeColumn is returned when ColsToEncode names a column
	// that is not an encodable text field.
	ErrUnknownEncodeColumn = errors.New("unknown encode column")

	// ErrInvalidThreshold is returned for a probability threshold outside [0,1].
	ErrInvalidThreshold = errors.New("invalid probability threshold")

	// ErrInvalidParams is returned for otherwise inconsistent parameters.
	ErrInvalidParams = errors.New("invalid pipeline parameters")
)
