package search

import (
	"context"
	"testing"

	"github.com/poiesic/semdex/ai/mock"
	"github.com/poiesic/semdex/core"
	"github.com/poiesic/semdex/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingMonitor captures hook invocations for assertions
type recordingMonitor struct {
	calls   []string
	results []core.QueryResult
}

func (m *recordingMonitor) Start(query string)          { m.calls = append(m.calls, "start") }
func (m *recordingMonitor) AfterQueryEmbedding(_ []float32) {
	m.calls = append(m.calls, "embedding")
}
func (m *recordingMonitor) AfterIndexLookup(_ []core.QueryResult) {
	m.calls = append(m.calls, "lookup")
}
func (m *recordingMonitor) Finish(results []core.QueryResult) {
	m.calls = append(m.calls, "finish")
	m.results = results
}

func newTestIndex(t *testing.T, embedder *mock.MockEmbedder, texts ...string) *index.Index {
	t.Helper()

	idx := index.New()
	for _, text := range texts {
		vector, err := embedder.EmbedText(context.Background(), text)
		require.NoError(t, err)
		idx.Add(index.Entry{
			Vector: vector,
			Chunk: core.Chunk{
				Id:   core.IDFromContent(text),
				Text: text,
			},
		})
	}
	embedder.Reset()
	return idx
}

func TestNewResponder_Validation(t *testing.T) {
	embedder := mock.NewMockEmbedder()

	_, err := NewResponder(nil, embedder)
	assert.ErrorIs(t, err, ErrQuerierRequired)

	_, err = NewResponder(index.New(), nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestResponder_Search(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	idx := newTestIndex(t, embedder, "dogs are loyal companions", "cats nap in the sun")

	responder, err := NewResponder(idx, embedder)
	require.NoError(t, err)

	results, err := responder.Search(context.Background(), "dogs are loyal companions", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "dogs are loyal companions", results[0].Chunk.Text)
	assert.InDelta(t, 1.0, results[0].Score, 1e-4)
}

func TestResponder_Search_InvalidQuery(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	responder, err := NewResponder(index.New(), embedder)
	require.NoError(t, err)

	for _, query := range []string{"", "   ", "\t\n"} {
		_, err := responder.Search(context.Background(), query, 5)
		assert.ErrorIs(t, err, core.ErrInvalidQuery)
	}

	// Validation happens before the embedding service is consulted
	assert.Equal(t, 0, embedder.CallCount())
}

func TestResponder_Search_EmbedsQueryOnce(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	idx := newTestIndex(t, embedder, "some chunk")

	responder, err := NewResponder(idx, embedder)
	require.NoError(t, err)

	_, err = responder.Search(context.Background(), "a query", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, embedder.CallCount())
}

func TestResponder_Search_EmbedderError(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, core.ErrEmbeddingService
	}

	responder, err := NewResponder(index.New(), embedder)
	require.NoError(t, err)

	_, err = responder.Search(context.Background(), "a query", 3)
	assert.ErrorIs(t, err, core.ErrEmbeddingService)
}

func TestResponder_Search_EmptyIndex(t *testing.T) {
	responder, err := NewResponder(index.New(), mock.NewMockEmbedder())
	require.NoError(t, err)

	results, err := responder.Search(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestResponder_SearchWithMonitor(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	idx := newTestIndex(t, embedder, "dogs are loyal companions")

	responder, err := NewResponder(idx, embedder)
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	results, err := responder.SearchWithMonitor(context.Background(), "dogs", 1, monitor)
	require.NoError(t, err)

	assert.Equal(t, []string{"start", "embedding", "lookup", "finish"}, monitor.calls)
	assert.Equal(t, results, monitor.results)
}

func TestResponder_Stream_DeliversInRankOrder(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	idx := newTestIndex(t, embedder,
		"dogs are loyal companions",
		"cats nap in the sun",
		"fish swim in circles",
	)

	responder, err := NewResponder(idx, embedder)
	require.NoError(t, err)

	query := "dogs are loyal companions"
	expected, err := responder.Search(context.Background(), query, 3)
	require.NoError(t, err)

	var streamed []core.QueryResult
	for event := range responder.Stream(context.Background(), query, 3) {
		require.NoError(t, event.Err)
		require.NotNil(t, event.Result)
		streamed = append(streamed, *event.Result)
	}

	assert.Equal(t, expected, streamed)
}

func TestResponder_Stream_ErrorEvent(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, core.ErrEmbeddingService
	}

	responder, err := NewResponder(index.New(), embedder)
	require.NoError(t, err)

	var events []Event
	for event := range responder.Stream(context.Background(), "a query", 3) {
		events = append(events, event)
	}

	require.Len(t, events, 1)
	assert.ErrorIs(t, events[0].Err, core.ErrEmbeddingService)
	assert.Nil(t, events[0].Result)
}

func TestResponder_Stream_InvalidQuery(t *testing.T) {
	responder, err := NewResponder(index.New(), mock.NewMockEmbedder())
	require.NoError(t, err)

	var events []Event
	for event := range responder.Stream(context.Background(), "   ", 3) {
		events = append(events, event)
	}

	require.Len(t, events, 1)
	assert.ErrorIs(t, events[0].Err, core.ErrInvalidQuery)
}

func TestResponder_Stream_Cancellation(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	idx := newTestIndex(t, embedder,
		"first chunk", "second chunk", "third chunk", "fourth chunk",
	)

	responder, err := NewResponder(idx, embedder)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	events := responder.Stream(ctx, "a query", 4)

	// Consume one event, then cancel
	first, ok := <-events
	require.True(t, ok)
	require.NoError(t, first.Err)
	cancel()

	// The channel must close; it may deliver at most one more in-flight event
	remaining := 0
	for range events {
		remaining++
	}
	assert.LessOrEqual(t, remaining, 1)
}
