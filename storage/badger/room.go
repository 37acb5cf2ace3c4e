package badger

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/auditorium/core"
	"github.com/poiesic/auditorium/storage"
)

// RoomRepository implements storage.RoomRepository for BadgerDB.
type RoomRepository struct {
	backend *Backend
}

var _ storage.RoomRepository = (*RoomRepository)(nil)

// NewRoomRepository creates a new RoomRepository.
func NewRoomRepository(backend *Backend) *RoomRepository {
	return &RoomRepository{backend: backend}
}

// CreateRoom stores a new room.
func (r *RoomRepository) CreateRoom(ctx context.Context, room *core.Room) (*core.Room, error) {
	if err := core.ValidateRoom(room); err != nil {
		return nil, err
	}
	if room.ID == "" {
		room.ID = core.NewID()
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		exists, err := roomExists(tx, room.ID)
		if err != nil {
			return err
		}
		if exists {
			return storage.ErrDuplicateKey
		}
		if err := tx.Set(makeRoomKey(room.ID), storage.MarshalRoom(room)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return room, nil
}

// GetRoom retrieves a room by ID.
func (r *RoomRepository) GetRoom(ctx context.Context, id core.ID) (*core.Room, error) {
	var room *core.Room
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeRoomKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			room, err = storage.UnmarshalRoom(val)
			return err
		})
	}, false)
	return room, err
}

// ListRooms returns every room with its question count, newest first.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]*core.RoomSummary, error) {
	var results []*core.RoomSummary
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeRoomPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var room *core.Room
			err := iter.Item().Value(func(val []byte) error {
				var err error
				room, err = storage.UnmarshalRoom(val)
				return err
			})
			if err != nil {
				return err
			}
			count, err := countQuestions(tx, room.ID)
			if err != nil {
				return err
			}
			results = append(results, &core.RoomSummary{Room: *room, QuestionsCount: count})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.RoomSummary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return results, nil
}

// countQuestions counts question keys of a room without reading values.
func countQuestions(tx *badger.Txn, roomID core.ID) (int, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makeRoomQuestionPrefix(roomID)
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	count := 0
	for iter.Rewind(); iter.Valid(); iter.Next() {
		count++
	}
	return count, nil
}
