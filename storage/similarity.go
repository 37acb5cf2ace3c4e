package storage

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/poiesic/auditorium/core"
)

const (
	// DefaultMinSimilarity is the exclusive similarity floor for grounding.
	DefaultMinSimilarity = 0.7

	// DefaultLimit is the maximum number of chunks used to ground an answer.
	DefaultLimit = 3
)

// SimilarityQuery holds the filter and cap applied by FindSimilar.
type SimilarityQuery struct {
	// MinSimilarity is exclusive: a chunk must score strictly above it.
	MinSimilarity float64

	// Limit caps the number of returned chunks.
	Limit int
}

// DefaultSimilarityQuery returns the 0.7 / top-3 grounding policy.
func DefaultSimilarityQuery() SimilarityQuery {
	return SimilarityQuery{
		MinSimilarity: DefaultMinSimilarity,
		Limit:         DefaultLimit,
	}
}

// Validate checks the query parameters.
func (q SimilarityQuery) Validate() error {
	if q.Limit < 1 {
		return fmt.Errorf("%w: limit must be at least 1, got %d", ErrInvalidQuery, q.Limit)
	}
	if math.IsNaN(q.MinSimilarity) || q.MinSimilarity < -1 || q.MinSimilarity > 1 {
		return fmt.Errorf("%w: min similarity must be within [-1, 1], got %v", ErrInvalidQuery, q.MinSimilarity)
	}
	return nil
}

// Accepts reports whether a similarity score passes the filter.
func (q SimilarityQuery) Accepts(score float64) bool {
	return score > q.MinSimilarity
}

// CosineSimilarity returns 1 - cosine_distance(a, b), in the range [-1, 1].
// This is the same quantity pgvector computes as 1 - (a <=> b).
// A zero vector has no direction and yields NaN, which no query accepts.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return math.NaN(), nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// CompareScored orders scored chunks by score descending, then chunk ID
// ascending so equal scores rank deterministically.
func CompareScored(a, b *core.ScoredChunk) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return cmp.Compare(a.Chunk.ID, b.Chunk.ID)
}

// Rank filters already scored candidates with q, sorts them with
// CompareScored and caps the result at q.Limit. Scores are never
// recomputed, so the filter and the ordering see the same value.
func Rank(candidates []*core.ScoredChunk, q SimilarityQuery) []*core.ScoredChunk {
	ranked := make([]*core.ScoredChunk, 0, len(candidates))
	for _, c := range candidates {
		if c != nil && c.Chunk != nil && q.Accepts(c.Score) {
			ranked = append(ranked, c)
		}
	}
	slices.SortFunc(ranked, CompareScored)
	if len(ranked) > q.Limit {
		ranked = ranked[:q.Limit]
	}
	return ranked
}
