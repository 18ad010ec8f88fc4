package storage

import (
	"testing"

	"github.com/poiesic/semdex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalEmbeddingRecord_RoundTrip(t *testing.T) {
	record := &EmbeddingRecord{
		ChunkID: core.IDFromContent("some chunk text"),
		Model:   "embeddinggemma",
		Vector:  []float32{0.25, -0.5, 0.125, 1.0},
	}

	data := MarshalEmbeddingRecord(record)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalEmbeddingRecord(data)
	require.NoError(t, err)
	assert.Equal(t, record.ChunkID, decoded.ChunkID)
	assert.Equal(t, record.Model, decoded.Model)
	assert.Equal(t, record.Vector, decoded.Vector)
}

func TestMarshalEmbeddingRecord_EmptyVector(t *testing.T) {
	record := &EmbeddingRecord{
		ChunkID: 42,
		Model:   "m",
	}

	decoded, err := UnmarshalEmbeddingRecord(MarshalEmbeddingRecord(record))
	require.NoError(t, err)
	assert.Equal(t, core.ID(42), decoded.ChunkID)
	assert.Empty(t, decoded.Vector)
}

func TestUnmarshalEmbeddingRecord_Truncated(t *testing.T) {
	record := &EmbeddingRecord{
		ChunkID: core.IDFromContent("text"),
		Model:   "embeddinggemma",
		Vector:  []float32{0.1, 0.2, 0.3},
	}
	data := MarshalEmbeddingRecord(record)

	_, err := UnmarshalEmbeddingRecord(data[:len(data)/2])
	assert.Error(t, err)
}

func TestMarshalID_RoundTrip(t *testing.T) {
	id := core.IDFromContent("content")

	decoded, err := UnmarshalID(MarshalID(id))
	require.NoError(t, err)
	assert.Equal(t, id, decoded)
}
