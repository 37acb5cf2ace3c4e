package badger

import (
	"context"
	"testing"

	"github.com/poiesic/auditorium/core"
	"github.com/poiesic/auditorium/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestRoom(t *testing.T, store *Store, name string) core.ID {
	t.Helper()
	room, err := store.Rooms().CreateRoom(context.Background(), &core.Room{Name: name})
	require.NoError(t, err)
	return room.ID
}

func addTestChunk(t *testing.T, store *Store, roomID core.ID, id core.ID, text string, vector []float32) *core.AudioChunk {
	t.Helper()
	chunk, err := store.Chunks().AddChunk(context.Background(), &core.AudioChunk{
		ID:            id,
		RoomID:        roomID,
		Transcription: text,
		Embedding:     vector,
		MimeType:      "audio/webm",
	})
	require.NoError(t, err)
	return chunk
}

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir() + "/db"
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	_, err = NewStore(backend).Rooms().GetRoom(context.Background(), core.NewID())
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestFindSimilar_NoChunks(t *testing.T) {
	store := newTestStore(t)
	roomID := createTestRoom(t, store, "empty")

	results, err := store.Chunks().FindSimilar(context.Background(), roomID, []float32{0.1, 0.2, 0.3}, storage.DefaultSimilarityQuery())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilar_ThresholdAndOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	roomID := createTestRoom(t, store, "biologia")

	addTestChunk(t, store, roomID, "", "identical", []float32{1, 0, 0})
	addTestChunk(t, store, roomID, "", "close", []float32{0.9, 0.1, 0})
	addTestChunk(t, store, roomID, "", "below threshold", []float32{0.6, 0.8, 0})
	addTestChunk(t, store, roomID, "", "unrelated", []float32{0, 0, 1})

	results, err := store.Chunks().FindSimilar(ctx, roomID, []float32{1, 0, 0}, storage.DefaultSimilarityQuery())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "identical", results[0].Chunk.Transcription)
	assert.Equal(t, "close", results[1].Chunk.Transcription)
	for _, r := range results {
		assert.Greater(t, r.Score, storage.DefaultMinSimilarity)
	}
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestFindSimilar_LimitAndTieBreak(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	roomID := createTestRoom(t, store, "física")

	ids := []core.ID{
		"00000000-0000-4000-8000-000000000004",
		"00000000-0000-4000-8000-000000000002",
		"00000000-0000-4000-8000-000000000003",
		"00000000-0000-4000-8000-000000000001",
	}
	for _, id := range ids {
		addTestChunk(t, store, roomID, id, "same text "+id.String(), []float32{0.5, 0.5})
	}

	results, err := store.Chunks().FindSimilar(ctx, roomID, []float32{1, 1}, storage.DefaultSimilarityQuery())
	require.NoError(t, err)
	require.Len(t, results, storage.DefaultLimit)
	assert.Equal(t, ids[3], results[0].Chunk.ID)
	assert.Equal(t, ids[1], results[1].Chunk.ID)
	assert.Equal(t, ids[2], results[2].Chunk.ID)
}

func TestFindSimilar_RoomIsolation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	roomA := createTestRoom(t, store, "A")
	roomB := createTestRoom(t, store, "B")

	addTestChunk(t, store, roomA, "", "only in A", []float32{1, 0})
	addTestChunk(t, store, roomB, "", "only in B", []float32{1, 0})

	results, err := store.Chunks().FindSimilar(ctx, roomA, []float32{1, 0}, storage.DefaultSimilarityQuery())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "only in A", results[0].Chunk.Transcription)
	assert.Equal(t, roomA, results[0].Chunk.RoomID)
}

func TestFindSimilar_InvalidQuery(t *testing.T) {
	store := newTestStore(t)
	roomID := createTestRoom(t, store, "x")

	_, err := store.Chunks().FindSimilar(context.Background(), roomID, []float32{1}, storage.SimilarityQuery{MinSimilarity: 0.7})
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)

	_, err = store.Chunks().FindSimilar(context.Background(), roomID, nil, storage.DefaultSimilarityQuery())
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestFindSimilar_DimensionMismatch(t *testing.T) {
	store := newTestStore(t)
	roomID := createTestRoom(t, store, "x")
	addTestChunk(t, store, roomID, "", "three dims", []float32{1, 0, 0})

	_, err := store.Chunks().FindSimilar(context.Background(), roomID, []float32{1, 0}, storage.DefaultSimilarityQuery())
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
}
