package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/poiesic/auditorium/core"
	"github.com/poiesic/auditorium/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestStore connects to AUDITORIUM_TEST_DATABASE_URL with a 3-dimension
// schema. The database must be dedicated to tests.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("AUDITORIUM_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("AUDITORIUM_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	store, err := Open(ctx, url, WithMigrate(3))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestIntegration_FindSimilar(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	room, err := store.Rooms().CreateRoom(ctx, &core.Room{Name: "Physics"})
	require.NoError(t, err)
	other, err := store.Rooms().CreateRoom(ctx, &core.Room{Name: "Chemistry"})
	require.NoError(t, err)

	add := func(roomID core.ID, text string, vector []float32) *core.AudioChunk {
		chunk, err := store.Chunks().AddChunk(ctx, &core.AudioChunk{
			RoomID:        roomID,
			Transcription: text,
			Embedding:     vector,
		})
		require.NoError(t, err)
		return chunk
	}
	exact := add(room.ID, "exact", []float32{1, 0, 0})
	near := add(room.ID, "near", []float32{0.9, 0.1, 0})
	add(room.ID, "below", []float32{0.6, 0.8, 0})
	add(other.ID, "other room", []float32{1, 0, 0})

	results, err := store.Chunks().FindSimilar(ctx, room.ID, []float32{1, 0, 0}, storage.DefaultSimilarityQuery())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, exact.ID, results[0].Chunk.ID)
	assert.Equal(t, near.ID, results[1].Chunk.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestIntegration_FindSimilarSkipsZeroVectors(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	room, err := store.Rooms().CreateRoom(ctx, &core.Room{Name: "Silence"})
	require.NoError(t, err)
	_, err = store.Chunks().AddChunk(ctx, &core.AudioChunk{RoomID: room.ID, Transcription: "zero", Embedding: []float32{0, 0, 0}})
	require.NoError(t, err)
	kept, err := store.Chunks().AddChunk(ctx, &core.AudioChunk{RoomID: room.ID, Transcription: "kept", Embedding: []float32{1, 0, 0}})
	require.NoError(t, err)

	results, err := store.Chunks().FindSimilar(ctx, room.ID, []float32{1, 0, 0}, storage.SimilarityQuery{MinSimilarity: -1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, kept.ID, results[0].Chunk.ID)

	// A zero query vector scores NaN against everything.
	results, err = store.Chunks().FindSimilar(ctx, room.ID, []float32{0, 0, 0}, storage.SimilarityQuery{MinSimilarity: -1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIntegration_QuestionsAndRooms(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	room, err := store.Rooms().CreateRoom(ctx, &core.Room{Name: "History"})
	require.NoError(t, err)

	answer := "In 1822."
	_, err = store.Questions().AddQuestion(ctx, &core.Question{RoomID: room.ID, Question: "When?", Answer: &answer})
	require.NoError(t, err)
	_, err = store.Questions().AddQuestion(ctx, &core.Question{RoomID: room.ID, Question: "Why?"})
	require.NoError(t, err)

	questions, err := store.Questions().ListQuestions(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, questions, 2)

	_, err = store.Questions().AddQuestion(ctx, &core.Question{RoomID: core.NewID(), Question: "Orphan?"})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	got, err := store.Rooms().GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "History", got.Name)

	summaries, err := store.Rooms().ListRooms(ctx)
	require.NoError(t, err)
	for _, s := range summaries {
		if s.ID == room.ID {
			assert.Equal(t, 2, s.QuestionsCount)
		}
	}
}
