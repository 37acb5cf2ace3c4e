package storage

import (
	"context"

	"github.com/poiesic/auditorium/core"
)

// RoomRepository provides operations for managing rooms.
type RoomRepository interface {
	// CreateRoom stores a new room.
	// Generates the ID when empty and sets CreatedAt.
	// Returns ErrDuplicateKey if a room with the same ID exists.
	CreateRoom(ctx context.Context, room *core.Room) (*core.Room, error)

	// GetRoom retrieves a room by ID.
	// Returns ErrNotFound if the room doesn't exist.
	GetRoom(ctx context.Context, id core.ID) (*core.Room, error)

	// ListRooms returns every room with its question count, newest first.
	ListRooms(ctx context.Context) ([]*core.RoomSummary, error)
}

// ChunkRepository is the vector store for transcribed audio.
// Every read is scoped to a single room.
type ChunkRepository interface {
	// AddChunk atomically stores a new audio chunk.
	// Generates the ID when empty and sets CreatedAt.
	// Returns ErrNotFound if the owning room doesn't exist.
	AddChunk(ctx context.Context, chunk *core.AudioChunk) (*core.AudioChunk, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.AudioChunk, error)

	// HasDigest reports whether the room already holds a chunk ingested
	// from audio with the given digest.
	HasDigest(ctx context.Context, roomID core.ID, digest string) (bool, error)

	// FindSimilar returns chunks of roomID whose similarity to vector is
	// strictly greater than query.MinSimilarity. Results are ordered by
	// similarity descending, then chunk ID ascending, and capped at
	// query.Limit. Similarity is defined by CosineSimilarity.
	FindSimilar(ctx context.Context, roomID core.ID, vector []float32, query SimilarityQuery) ([]*core.ScoredChunk, error)
}

// QuestionRepository provides operations for managing questions.
type QuestionRepository interface {
	// AddQuestion atomically stores a new question.
	// Generates the ID when empty and sets CreatedAt.
	// Returns ErrNotFound if the owning room doesn't exist.
	AddQuestion(ctx context.Context, question *core.Question) (*core.Question, error)

	// ListQuestions returns the questions of a room, newest first.
	ListQuestions(ctx context.Context, roomID core.ID) ([]*core.Question, error)
}

// Store aggregates the repositories sharing one storage handle.
// Implementations must be thread-safe and support concurrent access.
type Store interface {
	Rooms() RoomRepository
	Chunks() ChunkRepository
	Questions() QuestionRepository

	// Close releases the underlying storage handle.
	Close() error
}
