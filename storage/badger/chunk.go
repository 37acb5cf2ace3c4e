package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/auditorium/core"
	"github.com/poiesic/auditorium/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) *ChunkRepository {
	return &ChunkRepository{backend: backend}
}

// AddChunk stores the chunk, its ID index entry and its digest index
// entry in a single transaction.
func (r *ChunkRepository) AddChunk(ctx context.Context, chunk *core.AudioChunk) (*core.AudioChunk, error) {
	if err := core.ValidateAudioChunk(chunk); err != nil {
		return nil, err
	}
	if chunk.ID == "" {
		chunk.ID = core.NewID()
	}
	chunk.CreatedAt = time.Now().UTC()

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		exists, err := roomExists(tx, chunk.RoomID)
		if err != nil {
			return err
		}
		if !exists {
			return storage.ErrNotFound
		}

		key := makeChunkKey(chunk.RoomID, chunk.ID)
		if _, err := tx.Get(key); err == nil {
			return storage.ErrDuplicateKey
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := tx.Set(key, storage.MarshalAudioChunk(chunk)); err != nil {
			return err
		}
		if err := tx.Set(makeChunkIDIndexKey(chunk.ID), storage.MarshalID(chunk.RoomID)); err != nil {
			return err
		}
		if chunk.AudioDigest != "" {
			digestKey := makeChunkDigestKey(chunk.RoomID, chunk.AudioDigest)
			if err := tx.Set(digestKey, storage.MarshalID(chunk.ID)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// GetChunk retrieves a single chunk by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id core.ID) (*core.AudioChunk, error) {
	var chunk *core.AudioChunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeChunkIDIndexKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		var roomID core.ID
		if err := item.Value(func(val []byte) error {
			roomID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		item, err = tx.Get(makeChunkKey(roomID, id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			chunk, err = storage.UnmarshalAudioChunk(val)
			return err
		})
	}, false)
	return chunk, err
}

// HasDigest reports whether roomID holds a chunk with the given audio digest.
func (r *ChunkRepository) HasDigest(ctx context.Context, roomID core.ID, digest string) (bool, error) {
	found := false
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeChunkDigestKey(roomID, digest))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		found = true
		return nil
	}, false)
	return found, err
}

// FindSimilar delegates to the backend.
func (r *ChunkRepository) FindSimilar(ctx context.Context, roomID core.ID, vector []float32, query storage.SimilarityQuery) ([]*core.ScoredChunk, error) {
	return r.backend.FindSimilar(ctx, roomID, vector, query)
}
