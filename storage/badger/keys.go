package badger

import (
	"encoding/binary"

	"github.com/poiesic/semdex/core"
)

// Key prefixes for different data types
const (
	embeddingPrefix = "embrec"
)

// makeEmbeddingKey generates a composite key for a cached embedding.
// Format: prefix:modelID:chunkID, with both IDs written BigEndian so
// lexicographic iteration groups records by model.
func makeEmbeddingKey(modelID, chunkID core.ID) []byte {
	prefix := embeddingPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for modelID + 8 bytes for chunkID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(modelID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkID))
	return buf
}
