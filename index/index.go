// Package index provides an in-memory vector index with brute-force
// top-k similarity lookup. For single-process corpora in the thousands of
// chunks an O(n) scan per query is the right trade: query latency is
// dominated by the embedding network call, not the scan.
package index

import (
	"sort"
	"sync"

	"github.com/poiesic/semdex/core"
)

// Entry is the unit stored in the index: an embedding vector paired with
// the chunk it was computed from.
type Entry struct {
	Vector []float32
	Chunk  core.Chunk
}

// Index is an append-only, in-memory collection of entries. Add performs no
// deduplication: adding the same chunk twice yields two entries, keeping Add
// O(1) amortized. Callers are responsible for not double-indexing.
//
// The index is safe for concurrent use. The expected pattern is a single
// bulk Add (or Replace) during an indexing pass followed by read-only
// queries for the process lifetime.
type Index struct {
	mu      sync.RWMutex
	entries []Entry
}

// New creates an empty index.
func New() *Index {
	return &Index{}
}

// Add appends entries to the index.
func (ix *Index) Add(entries ...Entry) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.entries = append(ix.entries, entries...)
}

// Replace discards the current contents and installs the given entries.
// Used by corpus reloads.
func (ix *Index) Replace(entries []Entry) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.entries = entries
}

// Len returns the number of stored entries.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Query computes the similarity between the query vector and every stored
// entry and returns the top k results ordered by descending score. Stored
// vectors and the query vector are expected to be unit length, so the dot
// product equals cosine similarity. Equal scores rank by insertion order,
// earlier-added entries first. An empty index returns an empty result for
// any k; if k exceeds the number of entries, all entries are returned sorted.
func (ix *Index) Query(vector []float32, k int) []core.QueryResult {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if k <= 0 || len(ix.entries) == 0 {
		return []core.QueryResult{}
	}

	results := make([]core.QueryResult, len(ix.entries))
	for i, entry := range ix.entries {
		results[i] = core.QueryResult{
			Chunk: entry.Chunk,
			Score: core.DotProduct(vector, entry.Vector),
		}
	}

	// Stable sort preserves insertion order between equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k]
}
