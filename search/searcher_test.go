package search

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/poiesic/auditorium/ai/mock"
	"github.com/poiesic/auditorium/core"
	"github.com/poiesic/auditorium/storage"
	"github.com/poiesic/auditorium/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vectorEmbedder maps known texts to fixed vectors.
func vectorEmbedder(vectors map[string][]float32) *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if v, ok := vectors[text]; ok {
			return v, nil
		}
		return []float32{0, 0, 1}, nil
	}
	return embedder
}

func setupStore(t *testing.T) (*badger.Store, core.ID) {
	t.Helper()
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	room, err := store.Rooms().CreateRoom(context.Background(), &core.Room{Name: "Science"})
	require.NoError(t, err)
	return store, room.ID
}

func addChunk(t *testing.T, store *badger.Store, roomID core.ID, text string, vector []float32) *core.AudioChunk {
	t.Helper()
	chunk, err := store.Chunks().AddChunk(context.Background(), &core.AudioChunk{
		RoomID:        roomID,
		Transcription: text,
		Embedding:     vector,
		MimeType:      "audio/webm",
	})
	require.NoError(t, err)
	return chunk
}

func TestNewSearcher(t *testing.T) {
	store, _ := setupStore(t)
	embedder := mock.NewMockEmbedder()

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(store.Chunks(), embedder)
		require.NoError(t, err)
		assert.Equal(t, storage.DefaultSimilarityQuery(), searcher.Query())
	})

	t.Run("with custom logger", func(t *testing.T) {
		searcher, err := NewSearcher(store.Chunks(), embedder, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(store.Chunks(), embedder, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with similarity query", func(t *testing.T) {
		q := storage.SimilarityQuery{MinSimilarity: 0.5, Limit: 5}
		searcher, err := NewSearcher(store.Chunks(), embedder, WithSimilarityQuery(q))
		require.NoError(t, err)
		assert.Equal(t, q, searcher.Query())
	})

	t.Run("invalid similarity query", func(t *testing.T) {
		_, err := NewSearcher(store.Chunks(), embedder, WithSimilarityQuery(storage.SimilarityQuery{Limit: 0}))
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	})

	t.Run("negative timeout", func(t *testing.T) {
		_, err := NewSearcher(store.Chunks(), embedder, WithEmbeddingTimeout(-time.Second))
		assert.Error(t, err)
	})

	t.Run("nil chunk repository", func(t *testing.T) {
		_, err := NewSearcher(nil, embedder)
		assert.Equal(t, ErrChunkRepositoryRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewSearcher(store.Chunks(), nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})
}

func TestFindRelevant_EmptyRoom(t *testing.T) {
	store, roomID := setupStore(t)
	searcher, err := NewSearcher(store.Chunks(), mock.NewMockEmbedder())
	require.NoError(t, err)

	results, err := searcher.FindRelevant(context.Background(), roomID, "anything?")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindRelevant_ThresholdOrderAndCap(t *testing.T) {
	store, roomID := setupStore(t)
	ctx := context.Background()

	best := addChunk(t, store, roomID, "the sky is blue because of rayleigh scattering", []float32{1, 0, 0})
	second := addChunk(t, store, roomID, "light scatters in the atmosphere", []float32{0.95, 0.05, 0})
	third := addChunk(t, store, roomID, "sunsets look red", []float32{0.9, 0.2, 0})
	addChunk(t, store, roomID, "fourth above threshold", []float32{0.85, 0.3, 0})
	addChunk(t, store, roomID, "photosynthesis", []float32{0, 1, 0})

	embedder := vectorEmbedder(map[string][]float32{"why is the sky blue?": {1, 0, 0}})
	searcher, err := NewSearcher(store.Chunks(), embedder)
	require.NoError(t, err)

	results, err := searcher.FindRelevant(ctx, roomID, "why is the sky blue?")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, best.ID, results[0].Chunk.ID)
	assert.Equal(t, second.ID, results[1].Chunk.ID)
	assert.Equal(t, third.ID, results[2].Chunk.ID)
	for _, r := range results {
		assert.Greater(t, r.Score, storage.DefaultMinSimilarity)
	}

	assert.Equal(t, []string{
		"the sky is blue because of rayleigh scattering",
		"light scatters in the atmosphere",
		"sunsets look red",
	}, Passages(results))
}

func TestFindRelevant_RoomIsolation(t *testing.T) {
	store, roomID := setupStore(t)
	ctx := context.Background()

	other, err := store.Rooms().CreateRoom(ctx, &core.Room{Name: "History"})
	require.NoError(t, err)
	addChunk(t, store, other.ID, "same vector, other room", []float32{1, 0, 0})

	searcher, err := NewSearcher(store.Chunks(), vectorEmbedder(map[string][]float32{"q": {1, 0, 0}}))
	require.NoError(t, err)

	results, err := searcher.FindRelevant(ctx, roomID, "q")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindRelevant_EmbeddingFailure(t *testing.T) {
	store, roomID := setupStore(t)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("service unavailable")
	}
	searcher, err := NewSearcher(store.Chunks(), embedder)
	require.NoError(t, err)

	_, err = searcher.FindRelevant(context.Background(), roomID, "q")
	assert.ErrorIs(t, err, core.ErrEmbedding)
}

func TestFindRelevant_EmptyEmbedding(t *testing.T) {
	store, roomID := setupStore(t)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{}, nil
	}
	searcher, err := NewSearcher(store.Chunks(), embedder)
	require.NoError(t, err)

	_, err = searcher.FindRelevant(context.Background(), roomID, "q")
	assert.ErrorIs(t, err, core.ErrEmbedding)
	assert.ErrorIs(t, err, core.ErrEmptyEmbedding)
}

func TestFindRelevant_EmbeddingTimeout(t *testing.T) {
	store, roomID := setupStore(t)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	searcher, err := NewSearcher(store.Chunks(), embedder, WithEmbeddingTimeout(10*time.Millisecond))
	require.NoError(t, err)

	_, err = searcher.FindRelevant(context.Background(), roomID, "q")
	assert.ErrorIs(t, err, core.ErrEmbedding)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFindRelevant_StoreFailure(t *testing.T) {
	store, roomID := setupStore(t)
	searcher, err := NewSearcher(store.Chunks(), mock.NewMockEmbedder())
	require.NoError(t, err)

	require.NoError(t, store.Close())
	_, err = searcher.FindRelevant(context.Background(), roomID, "q")
	assert.ErrorIs(t, err, core.ErrPersistence)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

type recordingMonitor struct {
	started    bool
	dimensions int
	searched   []*core.ScoredChunk
	finished   bool
}

func (m *recordingMonitor) Start(_ core.ID, _ string)                     { m.started = true }
func (m *recordingMonitor) AfterEmbedding(dimensions int)                 { m.dimensions = dimensions }
func (m *recordingMonitor) AfterVectorSearch(results []*core.ScoredChunk) { m.searched = results }
func (m *recordingMonitor) Finish(_ []*core.ScoredChunk)                  { m.finished = true }

func TestFindRelevantWithMonitor(t *testing.T) {
	store, roomID := setupStore(t)
	addChunk(t, store, roomID, "hit", []float32{1, 0, 0})

	searcher, err := NewSearcher(store.Chunks(), vectorEmbedder(map[string][]float32{"q": {1, 0, 0}}))
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	results, err := searcher.FindRelevantWithMonitor(context.Background(), roomID, "q", monitor)
	require.NoError(t, err)

	assert.True(t, monitor.started)
	assert.Equal(t, 3, monitor.dimensions)
	assert.Equal(t, results, monitor.searched)
	assert.True(t, monitor.finished)
}
