package search

import (
	"context"
	"log/slog"

	"github.com/poiesic/semdex/ai"
	"github.com/poiesic/semdex/core"
)

// Querier is the slice of index behavior the responder needs.
type Querier interface {
	Query(vector []float32, k int) []core.QueryResult
}

// Event is a single item on a result stream. Exactly one of Result and Err
// is set; an Err event is terminal.
type Event struct {
	Result *core.QueryResult
	Err    error
}

// Responder answers free-text queries against a vector index.
type Responder struct {
	querier  Querier
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures a Responder.
type Option func(*Responder) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Responder) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "search")
		return nil
	}
}

// NewResponder creates a new responder over the given querier and embedder.
func NewResponder(querier Querier, embedder ai.Embedder, opts ...Option) (*Responder, error) {
	if querier == nil {
		return nil, ErrQuerierRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Responder{
		querier:  querier,
		embedder: embedder,
		logger:   slog.Default().With("component", "search"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Search returns up to k chunks ranked by cosine similarity to the query.
func (r *Responder) Search(ctx context.Context, query string, k int) ([]core.QueryResult, error) {
	return r.SearchWithMonitor(ctx, query, k, nil)
}

// SearchWithMonitor searches with monitoring.
// The monitor receives callbacks at each stage of the query process.
func (r *Responder) SearchWithMonitor(ctx context.Context, query string, k int, monitor QueryMonitor) ([]core.QueryResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	// Validate before spending an embedding call
	if err := core.ValidateQueryText(query); err != nil {
		return nil, err
	}

	monitor.Start(query)

	embedding, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	vector := core.NormalizeVector(embedding)
	monitor.AfterQueryEmbedding(vector)

	results := r.querier.Query(vector, k)
	monitor.AfterIndexLookup(results)

	monitor.Finish(results)
	return results, nil
}

// Stream answers the query and delivers results one at a time over a channel,
// in rank order. The channel is always closed, on success, error and
// cancellation alike. An embedding or validation failure arrives as a single
// Err event.
func (r *Responder) Stream(ctx context.Context, query string, k int) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)

		results, err := r.Search(ctx, query, k)
		if err != nil {
			select {
			case events <- Event{Err: err}:
			case <-ctx.Done():
			}
			return
		}

		for i := range results {
			select {
			case events <- Event{Result: &results[i]}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events
}
