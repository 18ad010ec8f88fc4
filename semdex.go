// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package semdex

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/poiesic/semdex/ai"
	"github.com/poiesic/semdex/ai/openai"
	"github.com/poiesic/semdex/chunk"
	"github.com/poiesic/semdex/core"
	"github.com/poiesic/semdex/index"
	"github.com/poiesic/semdex/ingestion"
	"github.com/poiesic/semdex/search"
	"github.com/poiesic/semdex/source"
	"github.com/poiesic/semdex/storage"
	"github.com/poiesic/semdex/storage/badger"
)

// Engine ties the document source, chunker, embedder, vector index and
// responder together behind a single facade. The corpus is indexed lazily on
// first use; concurrent callers share one indexing pass.
type Engine struct {
	reader    source.Reader
	splitter  *chunk.Splitter
	embedder  ai.Embedder
	pipeline  *ingestion.Pipeline
	responder *search.Responder
	idx       *index.Index
	cache     storage.EmbeddingCache
	backend   *badger.Backend
	logger    *slog.Logger

	group   singleflight.Group
	indexed atomic.Bool
	closed  atomic.Bool
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig  *ai.Config
	embedder  ai.Embedder
	chunkSize int
	overlap   int
	cachePath string
	poolSize  int
	batchSize int
	logger    *slog.Logger
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithEmbedder overrides the embedding service client. Takes precedence over
// WithAIConfig.
func WithEmbedder(embedder ai.Embedder) EngineOption {
	return func(o *engineOptions) {
		o.embedder = embedder
	}
}

// WithChunking sets the chunk window size and overlap, in characters.
func WithChunking(size, overlap int) EngineOption {
	return func(o *engineOptions) {
		o.chunkSize = size
		o.overlap = overlap
	}
}

// WithCachePath enables the persistent embedding cache at the given path.
func WithCachePath(path string) EngineOption {
	return func(o *engineOptions) {
		o.cachePath = path
	}
}

// WithPoolSize sets the number of concurrent embedding workers.
func WithPoolSize(size int) EngineOption {
	return func(o *engineOptions) {
		o.poolSize = size
	}
}

// WithBatchSize sets the number of texts per embedding request.
func WithBatchSize(size int) EngineOption {
	return func(o *engineOptions) {
		o.batchSize = size
	}
}

// WithLogger sets the logger for the engine and its components.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// NewEngine creates an engine over the given document source.
func NewEngine(reader source.Reader, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig:  ai.DefaultConfig(),
		chunkSize: chunk.DefaultChunkSize,
		overlap:   chunk.DefaultOverlap,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	splitter, err := chunk.New(
		chunk.WithChunkSize(options.chunkSize),
		chunk.WithOverlap(options.overlap),
	)
	if err != nil {
		return nil, err
	}

	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	var (
		backend *badger.Backend
		cache   storage.EmbeddingCache
	)
	if options.cachePath != "" {
		backend, err = badger.OpenBackend(options.cachePath, false)
		if err != nil {
			return nil, err
		}
		cache, err = badger.NewEmbeddingCache(backend, options.aiConfig.EmbeddingModel)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	pipelineOpts := []ingestion.Option{
		ingestion.WithLogger(options.logger),
	}
	if cache != nil {
		pipelineOpts = append(pipelineOpts, ingestion.WithCache(cache))
	}
	if options.poolSize > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithPoolSize(options.poolSize))
	}
	if options.batchSize > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithBatchSize(options.batchSize))
	}

	pipeline, err := ingestion.NewPipeline(reader, splitter, embedder, pipelineOpts...)
	if err != nil {
		if backend != nil {
			backend.Close()
		}
		return nil, err
	}

	idx := index.New()

	responder, err := search.NewResponder(idx, embedder, search.WithLogger(options.logger))
	if err != nil {
		pipeline.Release()
		if backend != nil {
			backend.Close()
		}
		return nil, err
	}

	return &Engine{
		reader:    reader,
		splitter:  splitter,
		embedder:  embedder,
		pipeline:  pipeline,
		responder: responder,
		idx:       idx,
		cache:     cache,
		backend:   backend,
		logger:    options.logger,
	}, nil
}

// ensureIndexed builds the index on first use. Concurrent callers share one
// pass; a failed pass leaves the engine unindexed so the next caller retries.
func (e *Engine) ensureIndexed(ctx context.Context) error {
	if e.closed.Load() {
		return core.ErrIndexUnavailable
	}
	if e.indexed.Load() {
		return nil
	}

	_, err, _ := e.group.Do("index", func() (any, error) {
		if e.indexed.Load() {
			return nil, nil
		}

		entries, err := e.pipeline.Run(ctx)
		if err != nil {
			return nil, err
		}

		e.idx.Replace(entries)
		e.indexed.Store(true)
		e.logger.Info("corpus indexed", "entries", len(entries))
		return nil, nil
	})
	return err
}

// Index builds the vector index eagerly. Calling it is optional; the first
// query builds the index on demand.
func (e *Engine) Index(ctx context.Context) error {
	return e.ensureIndexed(ctx)
}

// Reload re-reads the corpus and replaces the index contents atomically.
// Queries served during the reload see the previous index.
func (e *Engine) Reload(ctx context.Context) error {
	if e.closed.Load() {
		return core.ErrIndexUnavailable
	}

	_, err, _ := e.group.Do("reload", func() (any, error) {
		entries, err := e.pipeline.Run(ctx)
		if err != nil {
			return nil, err
		}

		e.idx.Replace(entries)
		e.indexed.Store(true)
		e.logger.Info("corpus reloaded", "entries", len(entries))
		return nil, nil
	})
	return err
}

// Search returns up to k chunks ranked by similarity to the query, indexing
// the corpus first if needed.
func (e *Engine) Search(ctx context.Context, query string, k int) ([]core.QueryResult, error) {
	if err := core.ValidateQueryText(query); err != nil {
		return nil, err
	}
	if err := e.ensureIndexed(ctx); err != nil {
		return nil, err
	}
	return e.responder.Search(ctx, query, k)
}

// Stream answers the query over a channel, delivering results in rank order.
// The channel is always closed. Indexing or embedding failures arrive as a
// single Err event.
func (e *Engine) Stream(ctx context.Context, query string, k int) <-chan search.Event {
	if err := core.ValidateQueryText(query); err != nil {
		return errorStream(err)
	}
	if err := e.ensureIndexed(ctx); err != nil {
		return errorStream(err)
	}
	return e.responder.Stream(ctx, query, k)
}

func errorStream(err error) <-chan search.Event {
	events := make(chan search.Event, 1)
	events <- search.Event{Err: err}
	close(events)
	return events
}

// Len reports the number of indexed chunks.
func (e *Engine) Len() int {
	return e.idx.Len()
}

// Close releases the worker pool and the embedding cache. The engine should
// not be used after calling Close.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}

	e.pipeline.Release()

	if e.cache != nil {
		if err := e.cache.Close(); err != nil {
			e.logger.Error("error closing embedding cache", "err", err)
		}
	}
	if e.backend != nil {
		if err := e.backend.Close(); err != nil {
			e.logger.Error("error closing cache backend", "err", err)
			return err
		}
	}
	return nil
}
