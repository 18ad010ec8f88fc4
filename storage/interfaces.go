package storage

import (
	"context"

	"github.com/poiesic/semdex/core"
)

// EmbeddingRecord is one cached embedding-service response: the vector
// computed for a chunk's content under a specific model.
type EmbeddingRecord struct {
	ChunkID core.ID
	Model   string
	Vector  []float32
}

// EmbeddingCache stores embedding vectors keyed by chunk content ID so that
// re-indexing an unchanged corpus skips remote embedding calls. A cache is
// bound to a single embedding model at construction; switching models must
// use a separate namespace.
//
// Implementations must be thread-safe and support concurrent access.
type EmbeddingCache interface {
	// Get retrieves the cached vectors for the given chunk IDs.
	// IDs with no cached vector are simply absent from the result map
	// (no error for misses).
	Get(ctx context.Context, ids ...core.ID) (map[core.ID][]float32, error)

	// Put stores embedding records, overwriting any existing entries for
	// the same chunk IDs.
	Put(ctx context.Context, records ...*EmbeddingRecord) error

	// Close closes the cache backend and releases resources.
	Close() error
}
