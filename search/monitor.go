package search

import "github.com/poiesic/auditorium/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(roomID core.ID, question string)
	AfterEmbedding(dimensions int)
	AfterVectorSearch(results []*core.ScoredChunk)
	Finish(results []*core.ScoredChunk)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ core.ID, _ string)               {}
func (n *noopMonitor) AfterEmbedding(_ int)                    {}
func (n *noopMonitor) AfterVectorSearch(_ []*core.ScoredChunk) {}
func (n *noopMonitor) Finish(_ []*core.ScoredChunk)            {}
