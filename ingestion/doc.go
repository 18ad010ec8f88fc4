// Package ingestion provides pipeline orchestration for building the searchable corpus.
//
// The Pipeline type manages the indexing workflow, including:
//   - Reading documents from a source
//   - Splitting documents into overlapping chunks
//   - Resolving chunk vectors from the embedding cache or the embedding service
//
// Embedding requests are performed concurrently using a worker pool.
// A run is all-or-nothing: any failure discards the entire pass.
package ingestion
