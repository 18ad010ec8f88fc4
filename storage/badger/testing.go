package badger

import "github.com/poiesic/semdex/storage"

// NewMemoryCache creates an in-memory embedding cache for testing.
// The returned Backend must be closed by the caller.
func NewMemoryCache(model string) (storage.EmbeddingCache, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, err
	}

	cache, err := NewEmbeddingCache(backend, model)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}
	return cache, backend, nil
}
