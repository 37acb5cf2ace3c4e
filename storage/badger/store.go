package badger

import (
	"github.com/poiesic/auditorium/storage"
)

// Store implements storage.Store on a single BadgerDB backend.
type Store struct {
	backend   *Backend
	rooms     *RoomRepository
	chunks    *ChunkRepository
	questions *QuestionRepository
}

var _ storage.Store = (*Store)(nil)

// OpenStore opens (or creates) a BadgerDB store in the directory at filePath.
func OpenStore(filePath string) (*Store, error) {
	backend, err := OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}
	return NewStore(backend), nil
}

// NewStore creates a Store over an open backend. The store takes
// ownership of the backend and closes it on Close.
func NewStore(backend *Backend) *Store {
	return &Store{
		backend:   backend,
		rooms:     NewRoomRepository(backend),
		chunks:    NewChunkRepository(backend),
		questions: NewQuestionRepository(backend),
	}
}

func (s *Store) Rooms() storage.RoomRepository {
	return s.rooms
}

func (s *Store) Chunks() storage.ChunkRepository {
	return s.chunks
}

func (s *Store) Questions() storage.QuestionRepository {
	return s.questions
}

// Backend exposes the underlying backend.
func (s *Store) Backend() *Backend {
	return s.backend
}

// Close closes the backend.
func (s *Store) Close() error {
	if s.backend.IsClosed() {
		return nil
	}
	return s.backend.Close()
}
