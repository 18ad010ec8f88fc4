package ingestion

import "errors"

var (
	// ErrReaderRequired is returned when a pipeline is created without a document reader.
	ErrReaderRequired = errors.New("document reader is required")

	// ErrSplitterRequired is returned when a pipeline is created without a splitter.
	ErrSplitterRequired = errors.New("splitter is required")

	// ErrEmbedderRequired is returned when a pipeline is created without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrEmbeddingCount is returned when the embedding service returns a
	// different number of vectors than texts submitted.
	ErrEmbeddingCount = errors.New("embedding count does not match text count")
)
