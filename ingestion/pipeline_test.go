package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/semdex/ai/mock"
	"github.com/poiesic/semdex/chunk"
	"github.com/poiesic/semdex/core"
	"github.com/poiesic/semdex/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testReader implements source.Reader for testing
type testReader struct {
	documents []core.Document
	err       error
}

func (r *testReader) Read(ctx context.Context) ([]core.Document, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.documents, nil
}

func newTestSplitter(t *testing.T) *chunk.Splitter {
	t.Helper()
	splitter, err := chunk.New(chunk.WithChunkSize(50), chunk.WithOverlap(10))
	require.NoError(t, err)
	return splitter
}

func TestNewPipeline_Validation(t *testing.T) {
	splitter := newTestSplitter(t)
	embedder := mock.NewMockEmbedder()
	reader := &testReader{}

	_, err := NewPipeline(nil, splitter, embedder)
	assert.ErrorIs(t, err, ErrReaderRequired)

	_, err = NewPipeline(reader, nil, embedder)
	assert.ErrorIs(t, err, ErrSplitterRequired)

	_, err = NewPipeline(reader, splitter, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestPipeline_Run(t *testing.T) {
	reader := &testReader{documents: []core.Document{
		{Text: "The quick brown fox jumps over the lazy dog near the riverbank today.", SourceID: "doc-a"},
		{Text: "Cats sleep most of the day.", SourceID: "doc-b"},
	}}

	pipeline, err := NewPipeline(reader, newTestSplitter(t), mock.NewMockEmbedder())
	require.NoError(t, err)
	defer pipeline.Release()

	entries, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	// Entries follow document and chunk order
	assert.Equal(t, "doc-a", entries[0].Chunk.SourceID)
	assert.Equal(t, "doc-b", entries[len(entries)-1].Chunk.SourceID)

	// Every entry carries a vector
	for _, entry := range entries {
		assert.NotEmpty(t, entry.Vector)
		assert.Equal(t, entry.Chunk.Id, core.IDFromContent(entry.Chunk.Text))
	}
}

func TestPipeline_Run_EmptyCorpus(t *testing.T) {
	pipeline, err := NewPipeline(&testReader{}, newTestSplitter(t), mock.NewMockEmbedder())
	require.NoError(t, err)
	defer pipeline.Release()

	entries, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPipeline_Run_ReaderError(t *testing.T) {
	readErr := errors.New("read failure")
	pipeline, err := NewPipeline(&testReader{err: readErr}, newTestSplitter(t), mock.NewMockEmbedder())
	require.NoError(t, err)
	defer pipeline.Release()

	entries, err := pipeline.Run(context.Background())
	assert.ErrorIs(t, err, readErr)
	assert.Nil(t, entries)
}

func TestPipeline_Run_EmbedderErrorDiscardsPass(t *testing.T) {
	reader := &testReader{documents: []core.Document{
		{Text: "some document text", SourceID: "doc-a"},
	}}

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, core.ErrEmbeddingService
	}

	pipeline, err := NewPipeline(reader, newTestSplitter(t), embedder)
	require.NoError(t, err)
	defer pipeline.Release()

	entries, err := pipeline.Run(context.Background())
	assert.ErrorIs(t, err, core.ErrEmbeddingService)
	assert.Nil(t, entries)
}

func TestPipeline_Run_EmbeddingCountMismatch(t *testing.T) {
	reader := &testReader{documents: []core.Document{
		{Text: "first document", SourceID: "doc-a"},
		{Text: "second document", SourceID: "doc-b"},
	}}

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}}, nil // always one vector, regardless of input
	}

	pipeline, err := NewPipeline(reader, newTestSplitter(t), embedder, WithPoolSize(1))
	require.NoError(t, err)
	defer pipeline.Release()

	_, err = pipeline.Run(context.Background())
	assert.ErrorIs(t, err, ErrEmbeddingCount)
}

func TestPipeline_Run_DimensionMismatch(t *testing.T) {
	reader := &testReader{documents: []core.Document{
		{Text: "first document", SourceID: "doc-a"},
		{Text: "second document", SourceID: "doc-b"},
	}}

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = make([]float32, 2+i) // each vector gets a different dimension
			vectors[i][0] = 1
		}
		return vectors, nil
	}

	pipeline, err := NewPipeline(reader, newTestSplitter(t), embedder, WithPoolSize(1))
	require.NoError(t, err)
	defer pipeline.Release()

	_, err = pipeline.Run(context.Background())
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
}

func TestPipeline_Run_DeduplicatesIdenticalText(t *testing.T) {
	reader := &testReader{documents: []core.Document{
		{Text: "identical content", SourceID: "doc-a"},
		{Text: "identical content", SourceID: "doc-b"},
	}}

	var submitted []string
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		submitted = append(submitted, texts...)
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{1, 0, 0}
		}
		return vectors, nil
	}

	pipeline, err := NewPipeline(reader, newTestSplitter(t), embedder, WithPoolSize(1))
	require.NoError(t, err)
	defer pipeline.Release()

	entries, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	// Both documents produce entries, but the text is embedded once
	assert.Len(t, entries, 2)
	assert.Equal(t, []string{"identical content"}, submitted)
}

func TestPipeline_Run_CacheSkipsEmbedding(t *testing.T) {
	cache, backend, err := badger.NewMemoryCache("test-model")
	require.NoError(t, err)
	defer backend.Close()

	reader := &testReader{documents: []core.Document{
		{Text: "cached forever", SourceID: "doc-a"},
	}}

	embedder := mock.NewMockEmbedder()

	first, err := NewPipeline(reader, newTestSplitter(t), embedder, WithCache(cache))
	require.NoError(t, err)
	entries, err := first.Run(context.Background())
	first.Release()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, embedder.CallCount())

	embedder.Reset()

	second, err := NewPipeline(reader, newTestSplitter(t), embedder, WithCache(cache))
	require.NoError(t, err)
	defer second.Release()

	cachedEntries, err := second.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, cachedEntries, 1)
	assert.Equal(t, 0, embedder.CallCount(), "cached vector should skip the embedding service")
	assert.Equal(t, entries[0].Vector, cachedEntries[0].Vector)
}

func TestPipeline_Run_NormalizesVectors(t *testing.T) {
	reader := &testReader{documents: []core.Document{
		{Text: "some text", SourceID: "doc-a"},
	}}

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{3, 4}}, nil
	}

	pipeline, err := NewPipeline(reader, newTestSplitter(t), embedder)
	require.NoError(t, err)
	defer pipeline.Release()

	entries, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.InDelta(t, 0.6, entries[0].Vector[0], 1e-6)
	assert.InDelta(t, 0.8, entries[0].Vector[1], 1e-6)
}
