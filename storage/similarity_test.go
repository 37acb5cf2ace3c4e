package storage

import (
	"math"
	"testing"

	"github.com/poiesic/auditorium/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(id string, score float64) *core.ScoredChunk {
	return &core.ScoredChunk{Chunk: &core.AudioChunk{ID: core.ID(id)}, Score: score}
}

func ids(chunks []*core.ScoredChunk) []core.ID {
	out := make([]core.ID, len(chunks))
	for i, c := range chunks {
		out[i] = c.Chunk.ID
	}
	return out
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"45 degrees", []float32{1, 0}, []float32{1, 1}, 1 / math.Sqrt2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("zero vector is never accepted", func(t *testing.T) {
		got, err := CosineSimilarity([]float32{0, 0}, []float32{1, 0})
		require.NoError(t, err)
		assert.True(t, math.IsNaN(got))
		assert.False(t, DefaultSimilarityQuery().Accepts(got))
	})
}

func TestSimilarityQuery_Accepts(t *testing.T) {
	q := DefaultSimilarityQuery()

	assert.True(t, q.Accepts(0.85))
	assert.True(t, q.Accepts(0.7000001))
	assert.False(t, q.Accepts(0.7), "threshold is exclusive")
	assert.False(t, q.Accepts(0.69))
	assert.False(t, q.Accepts(-1))
}

func TestSimilarityQuery_Validate(t *testing.T) {
	assert.NoError(t, DefaultSimilarityQuery().Validate())
	assert.ErrorIs(t, SimilarityQuery{MinSimilarity: 0.7, Limit: 0}.Validate(), ErrInvalidQuery)
	assert.ErrorIs(t, SimilarityQuery{MinSimilarity: 1.5, Limit: 3}.Validate(), ErrInvalidQuery)
	assert.ErrorIs(t, SimilarityQuery{MinSimilarity: math.NaN(), Limit: 3}.Validate(), ErrInvalidQuery)
}

func TestRank(t *testing.T) {
	q := DefaultSimilarityQuery()

	t.Run("filters at or below threshold", func(t *testing.T) {
		got := Rank([]*core.ScoredChunk{scored("a", 0.7), scored("b", 0.71), scored("c", 0.2)}, q)
		assert.Equal(t, []core.ID{"b"}, ids(got))
	})

	t.Run("orders by score descending", func(t *testing.T) {
		got := Rank([]*core.ScoredChunk{scored("a", 0.75), scored("b", 0.95), scored("c", 0.85)}, q)
		assert.Equal(t, []core.ID{"b", "c", "a"}, ids(got))
	})

	t.Run("caps at limit", func(t *testing.T) {
		got := Rank([]*core.ScoredChunk{
			scored("a", 0.91), scored("b", 0.92), scored("c", 0.93), scored("d", 0.94), scored("e", 0.95),
		}, q)
		assert.Equal(t, []core.ID{"e", "d", "c"}, ids(got))
	})

	t.Run("ties break by id ascending", func(t *testing.T) {
		got := Rank([]*core.ScoredChunk{scored("c", 0.8), scored("a", 0.8), scored("b", 0.9), scored("d", 0.8)}, q)
		assert.Equal(t, []core.ID{"b", "a", "c"}, ids(got))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Rank(nil, q))
	})

	t.Run("nil entries are skipped", func(t *testing.T) {
		got := Rank([]*core.ScoredChunk{nil, {Score: 0.9}, scored("a", 0.9)}, q)
		assert.Equal(t, []core.ID{"a"}, ids(got))
	})
}
