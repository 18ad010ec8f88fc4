package chunk

import "errors"

var (
	// ErrInvalidChunkSize is returned when the configured chunk size is not positive.
	ErrInvalidChunkSize = errors.New("chunk size must be positive")

	// ErrInvalidOverlap is returned unless 0 <= overlap < chunk size.
	ErrInvalidOverlap = errors.New("overlap must be non-negative and smaller than chunk size")
)
