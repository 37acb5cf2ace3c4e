package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/auditorium/core"
	"github.com/poiesic/auditorium/storage"
)

// QuestionRepository implements storage.QuestionRepository for BadgerDB.
type QuestionRepository struct {
	backend *Backend
}

var _ storage.QuestionRepository = (*QuestionRepository)(nil)

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(backend *Backend) *QuestionRepository {
	return &QuestionRepository{backend: backend}
}

// AddQuestion stores a new question.
func (r *QuestionRepository) AddQuestion(ctx context.Context, question *core.Question) (*core.Question, error) {
	if err := core.ValidateQuestion(question); err != nil {
		return nil, err
	}
	if question.ID == "" {
		question.ID = core.NewID()
	}
	question.CreatedAt = time.Now().UTC()

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		exists, err := roomExists(tx, question.RoomID)
		if err != nil {
			return err
		}
		if !exists {
			return storage.ErrNotFound
		}

		key := makeQuestionKey(question.RoomID, question.CreatedAt, question.ID)
		if err := tx.Set(key, storage.MarshalQuestion(question)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return question, nil
}

// ListQuestions returns the questions of a room, newest first.
func (r *QuestionRepository) ListQuestions(ctx context.Context, roomID core.ID) ([]*core.Question, error) {
	var results []*core.Question
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeRoomQuestionPrefix(roomID)

		// Use reverse iterator to get most recent questions first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek past the last possible key with this prefix
		seekKey := append(append([]byte{}, prefix...), 0xff)
		for iter.Seek(seekKey); iter.Valid(); iter.Next() {
			var question *core.Question
			err := iter.Item().Value(func(val []byte) error {
				var err error
				question, err = storage.UnmarshalQuestion(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, question)
		}
		return nil
	}, false)
	return results, err
}
