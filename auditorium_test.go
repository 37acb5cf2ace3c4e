package auditorium

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/auditorium/ai/mock"
	"github.com/poiesic/auditorium/config"
	"github.com/poiesic/auditorium/core"
	"github.com/poiesic/auditorium/storage"
	"github.com/poiesic/auditorium/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func badgerConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Type = config.StorageBadger
	cfg.Storage.DataDir = filepath.Join(t.TempDir(), "data")
	return cfg
}

func openTestService(t *testing.T) (*Service, *mock.MockProvider) {
	t.Helper()
	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	svc, err := Open(context.Background(), badgerConfig(t), WithProvider(provider))
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc, provider
}

func TestOpen(t *testing.T) {
	t.Run("badger store", func(t *testing.T) {
		svc, _ := openTestService(t)
		assert.NotNil(t, svc.Store())
		assert.NotNil(t, svc.Provider())
		assert.NotNil(t, svc.ingest)
		assert.NotNil(t, svc.query)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0o644))

		cfg := config.Default()
		cfg.Storage.DataDir = tmpFile
		svc, err := Open(context.Background(), cfg, WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, svc)
	})

	t.Run("unknown storage", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.Type = "sqlite"
		_, err := Open(context.Background(), cfg, WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
	})

	t.Run("provider config is validated", func(t *testing.T) {
		cfg := badgerConfig(t)
		cfg.AI.APIKey = ""
		_, err := Open(context.Background(), cfg)
		assert.Error(t, err)
	})
}

func TestNew(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	provider := mock.NewMockProvider().(*mock.MockProvider)

	_, err = New(nil, provider)
	assert.Equal(t, ErrStoreRequired, err)
	assert.True(t, provider.Closed(), "provider is closed when New fails")

	_, err = New(store, nil)
	assert.Equal(t, ErrProviderRequired, err)
}

func TestService_Close(t *testing.T) {
	provider := mock.NewMockProvider().(*mock.MockProvider)
	svc, err := Open(context.Background(), badgerConfig(t), WithProvider(provider))
	require.NoError(t, err)

	require.NoError(t, svc.Close())
	assert.True(t, provider.Closed())
	assert.NoError(t, svc.Close(), "closing twice is harmless")
}

func TestService_RoundTrip(t *testing.T) {
	svc, _ := openTestService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, "  Fisica  ", "Mecanica classica")
	require.NoError(t, err)
	assert.Equal(t, "Fisica", room.Name)

	chunkID, err := svc.Ingest(ctx, room.ID.String(), []byte("a forca e massa vezes aceleracao"), "audio/webm")
	require.NoError(t, err)
	assert.NotEmpty(t, chunkID)

	q, err := svc.Ask(ctx, room.ID.String(), "O que e forca?")
	require.NoError(t, err)
	require.True(t, q.Answered())

	questions, err := svc.ListQuestions(ctx, room.ID.String())
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, q.ID, questions[0].ID)

	rooms, err := svc.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, 1, rooms[0].QuestionsCount)
}

func TestService_Errors(t *testing.T) {
	svc, _ := openTestService(t)
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, " ", "")
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = svc.ListQuestions(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = svc.ListQuestions(ctx, core.NewID().String())
	assert.ErrorIs(t, err, core.ErrPersistence)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestService_NewImporter(t *testing.T) {
	svc, _ := openTestService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, "Quimica", "")
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aula.mp3"), []byte("ligacoes covalentes"), 0o644))

	im, err := svc.NewImporter(nil, nil)
	require.NoError(t, err)
	summary, err := im.Run(ctx, room.ID.String(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Ingested)
}
