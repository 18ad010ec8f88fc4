package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/semdex/ai"
	"github.com/poiesic/semdex/chunk"
	"github.com/poiesic/semdex/core"
	"github.com/poiesic/semdex/index"
	"github.com/poiesic/semdex/source"
	"github.com/poiesic/semdex/storage"
)

// DefaultBatchSize is the number of chunk texts submitted to the embedding
// service per request.
const DefaultBatchSize = 32

// Pipeline orchestrates reading documents, splitting them into chunks, and
// embedding the chunks concurrently. A run is all-or-nothing: any failure
// discards the entire pass so a partial corpus is never observable.
type Pipeline struct {
	reader    source.Reader
	splitter  *chunk.Splitter
	embedder  ai.Embedder
	cache     storage.EmbeddingCache
	pool      *ants.Pool
	batchSize int
	logger    *slog.Logger
}

// Option configures a Pipeline during construction.
type Option func(*Pipeline) error

// WithPoolSize sets the number of concurrent embedding workers.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("pool size must be at least 1, got %d", size)
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets the number of texts per embedding request.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("batch size must be at least 1, got %d", size)
		}
		p.batchSize = size
		return nil
	}
}

// WithCache attaches a persistent embedding cache. Chunks whose vectors are
// already cached skip the embedding service.
func WithCache(cache storage.EmbeddingCache) Option {
	return func(p *Pipeline) error {
		p.cache = cache
		return nil
	}
}

// WithLogger sets the logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		p.logger = logger.With("component", "ingestion")
		return nil
	}
}

// NewPipeline creates a Pipeline over the given reader, splitter and embedder.
func NewPipeline(reader source.Reader, splitter *chunk.Splitter, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if reader == nil {
		return nil, ErrReaderRequired
	}
	if splitter == nil {
		return nil, ErrSplitterRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		reader:    reader,
		splitter:  splitter,
		embedder:  embedder,
		pool:      pool,
		batchSize: DefaultBatchSize,
		logger:    slog.Default().With("component", "ingestion"),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Run reads the corpus, splits it into chunks, embeds every chunk and
// returns the entries ready for indexing, in document and chunk order.
// On any error the whole pass is discarded.
func (p *Pipeline) Run(ctx context.Context) ([]index.Entry, error) {
	documents, err := p.reader.Read(ctx)
	if err != nil {
		return nil, err
	}

	var chunks []core.Chunk
	for _, doc := range documents {
		chunks = append(chunks, p.splitter.Split(doc)...)
	}

	p.logger.Info("corpus read", "documents", len(documents), "chunks", len(chunks))

	if len(chunks) == 0 {
		return []index.Entry{}, nil
	}

	vectors, err := p.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	entries := make([]index.Entry, len(chunks))
	for i, c := range chunks {
		entries[i] = index.Entry{
			Vector: vectors[c.Id],
			Chunk:  c,
		}
	}
	return entries, nil
}

// embedChunks resolves a vector for every chunk, consulting the cache first
// and embedding the misses in concurrent batches. Identical chunk text shares
// a content-derived ID, so it is embedded once.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []core.Chunk) (map[core.ID][]float32, error) {
	// Deduplicate by content ID
	uniqueTexts := make(map[core.ID]string, len(chunks))
	ids := make([]core.ID, 0, len(chunks))
	for _, c := range chunks {
		if _, seen := uniqueTexts[c.Id]; !seen {
			uniqueTexts[c.Id] = c.Text
			ids = append(ids, c.Id)
		}
	}

	vectors := make(map[core.ID][]float32, len(ids))
	if p.cache != nil {
		cached, err := p.cache.Get(ctx, ids...)
		if err != nil {
			return nil, err
		}
		for id, vector := range cached {
			vectors[id] = vector
		}
	}

	var misses []core.ID
	for _, id := range ids {
		if _, ok := vectors[id]; !ok {
			misses = append(misses, id)
		}
	}

	p.logger.Info("embedding chunks", "unique", len(ids), "cached", len(ids)-len(misses))

	if len(misses) == 0 {
		return vectors, nil
	}

	embedded, err := p.embedBatches(ctx, misses, uniqueTexts)
	if err != nil {
		return nil, err
	}

	if err := p.verifyDimensions(vectors, embedded); err != nil {
		return nil, err
	}

	if p.cache != nil {
		records := make([]*storage.EmbeddingRecord, 0, len(embedded))
		for id, vector := range embedded {
			records = append(records, &storage.EmbeddingRecord{ChunkID: id, Vector: vector})
		}
		if err := p.cache.Put(ctx, records...); err != nil {
			p.logger.Warn("failed to cache embeddings", "err", err)
		}
	}

	for id, vector := range embedded {
		vectors[id] = vector
	}
	return vectors, nil
}

// embedBatches submits the miss set to the embedding service in concurrent
// batches via the worker pool. The first error aborts the pass.
func (p *Pipeline) embedBatches(ctx context.Context, misses []core.ID, texts map[core.ID]string) (map[core.ID][]float32, error) {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		embedded = make(map[core.ID][]float32, len(misses))
	)

	for start := 0; start < len(misses); start += p.batchSize {
		end := min(start+p.batchSize, len(misses))
		batch := misses[start:end]

		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()

			batchTexts := make([]string, len(batch))
			for i, id := range batch {
				batchTexts[i] = texts[id]
			}

			results, err := p.embedder.EmbedTexts(ctx, batchTexts)
			if err == nil && len(results) != len(batch) {
				err = fmt.Errorf("%w: got %d, want %d", ErrEmbeddingCount, len(results), len(batch))
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			for i, id := range batch {
				embedded[id] = core.NormalizeVector(results[i])
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return embedded, nil
}

// verifyDimensions checks that all vectors from the cache and the embedding
// service share one dimensionality.
func (p *Pipeline) verifyDimensions(cached, embedded map[core.ID][]float32) error {
	dim := -1
	check := func(vectors map[core.ID][]float32) error {
		for id, vector := range vectors {
			if dim == -1 {
				dim = len(vector)
				continue
			}
			if len(vector) != dim {
				return fmt.Errorf("%w: chunk %d has dimension %d, want %d",
					core.ErrDimensionMismatch, id, len(vector), dim)
			}
		}
		return nil
	}

	if err := check(cached); err != nil {
		return err
	}
	return check(embedded)
}

// Release releases the worker pool. The pipeline should not be used after
// calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
