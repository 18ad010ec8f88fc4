package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated from content via BLAKE2b hashing so that identical
// content always maps to the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Document is one loaded source artifact: the full extracted text of a
// file plus its source identity. Documents are consumed entirely by the
// splitter and are not retained after chunking.
type Document struct {
	Text     string
	SourceID string
	Metadata map[string]string // Optional metadata (e.g., "path", "format")
}

// Chunk is a bounded slice of a Document's text, the unit of embedding
// and retrieval. OffsetStart/OffsetEnd record the chunk's byte position
// within the original text for traceability.
type Chunk struct {
	Id          ID
	Text        string
	SourceID    string
	OffsetStart int
	OffsetEnd   int
	Metadata    map[string]string
}

// QueryResult is a chunk matched by a similarity query, with its score.
// Results are transient and never persisted.
type QueryResult struct {
	Chunk Chunk
	Score float32
}
