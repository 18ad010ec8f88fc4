package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/semdex/core"
	"github.com/poiesic/semdex/storage"
)

// EmbeddingCache implements storage.EmbeddingCache for BadgerDB.
// The cache is namespaced by embedding model so records written under one
// model are never served for another.
type EmbeddingCache struct {
	backend *Backend
	model   string
	modelID core.ID
}

var _ storage.EmbeddingCache = (*EmbeddingCache)(nil)

// NewEmbeddingCache creates a cache over the given backend, bound to the
// given embedding model.
//
// Returns storage.EmbeddingCache interface to enforce abstraction.
func NewEmbeddingCache(backend *Backend, model string) (storage.EmbeddingCache, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	if model == "" {
		return nil, errors.New("embedding model required")
	}
	return &EmbeddingCache{
		backend: backend,
		model:   model,
		modelID: core.IDFromContent(model),
	}, nil
}

// Get retrieves cached vectors for the given chunk IDs.
// Missing IDs are absent from the result map.
func (c *EmbeddingCache) Get(ctx context.Context, ids ...core.ID) (map[core.ID][]float32, error) {
	if c.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	vectors := make(map[core.ID][]float32, len(ids))

	err := c.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}

			item, err := tx.Get(makeEmbeddingKey(c.modelID, id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			var record *storage.EmbeddingRecord
			err = item.Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalEmbeddingRecord(val)
				return err
			})
			if err != nil {
				return fmt.Errorf("%w: chunk %d: %w", storage.ErrSerializationFailed, id, err)
			}

			if record.Model != c.model {
				return fmt.Errorf("%w: want %q, found %q", storage.ErrModelMismatch, c.model, record.Model)
			}
			vectors[record.ChunkID] = record.Vector
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return vectors, nil
}

// Put stores embedding records, overwriting existing entries for the same
// chunk IDs.
func (c *EmbeddingCache) Put(ctx context.Context, records ...*storage.EmbeddingRecord) error {
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	return c.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if err := ctx.Err(); err != nil {
				return err
			}

			record.Model = c.model
			key := makeEmbeddingKey(c.modelID, record.ChunkID)
			if err := tx.Set(key, storage.MarshalEmbeddingRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Close is a no-op; the Backend owns the database handle.
func (c *EmbeddingCache) Close() error {
	return nil
}
