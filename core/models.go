package core

//go:generate go run ../cmd/musgen

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// ID is an opaque unique identifier for rooms, chunks and questions.
// It always holds the canonical string form of a UUID.
type ID string

// NewID generates a fresh random identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

// ParseID validates s and returns it in canonical form.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidID, s, err)
	}
	return ID(u.String()), nil
}

func (id ID) String() string {
	return string(id)
}

// AudioDigest returns a hex encoded BLAKE2b-256 digest of an audio payload.
// Identical payloads produce identical digests.
func AudioDigest(audio []byte) string {
	h, _ := blake2b.New(32, nil) // 32 bytes = 256 bits
	h.Write(audio)
	return hex.EncodeToString(h.Sum(nil))
}

// Room scopes audio chunks and questions.
type Room struct {
	ID          ID
	Name        string
	Description string
	CreatedAt   time.Time
}

// RoomSummary is a room together with the number of questions asked in it.
type RoomSummary struct {
	Room
	QuestionsCount int
}

// AudioChunk is the knowledge derived from one ingested audio submission.
type AudioChunk struct {
	ID            ID
	RoomID        ID
	Transcription string
	Embedding     []float32
	AudioDigest   string // BLAKE2b digest of the source audio
	MimeType      string
	CreatedAt     time.Time
}

// Question is a user query and its grounded answer.
// Answer is nil when no chunk in the room was similar enough to ground one.
type Question struct {
	ID        ID
	RoomID    ID
	Question  string
	Answer    *string
	CreatedAt time.Time
}

// Answered reports whether the question received a grounded answer.
func (q *Question) Answered() bool {
	return q.Answer != nil
}

// ScoredChunk is a chunk returned by similarity search along with its
// similarity to the query vector (1 - cosine distance).
type ScoredChunk struct {
	Chunk *AudioChunk
	Score float64
}
