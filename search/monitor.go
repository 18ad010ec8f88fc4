package search

import "github.com/poiesic/semdex/core"

// QueryMonitor provides hooks to observe the query process.
// Implement this interface to track intermediate steps and results during search.
type QueryMonitor interface {
	Start(query string)
	AfterQueryEmbedding(vector []float32)
	AfterIndexLookup(results []core.QueryResult)
	Finish(results []core.QueryResult)
}

// noopMonitor is a no-op implementation of QueryMonitor
type noopMonitor struct{}

var _ QueryMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                         {}
func (n *noopMonitor) AfterQueryEmbedding(_ []float32)        {}
func (n *noopMonitor) AfterIndexLookup(_ []core.QueryResult)  {}
func (n *noopMonitor) Finish(_ []core.QueryResult)            {}
