package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/poiesic/auditorium/core"
	"github.com/poiesic/auditorium/storage"
)

const (
	insertChunkSQL = `
INSERT INTO audio_chunks (id, room_id, transcription, embedding, audio_digest, mime_type, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	getChunkSQL = `
SELECT id::text, room_id::text, transcription, embedding, audio_digest, mime_type, created_at
FROM audio_chunks
WHERE id = $1`

	hasDigestSQL = `SELECT EXISTS (SELECT 1 FROM audio_chunks WHERE room_id = $1 AND audio_digest = $2)`

	// findSimilarSQL computes the similarity once in the CTE; the filter
	// and the ordering both read that column. A zero vector scores NaN,
	// which PostgreSQL orders above every number and equal to itself.
	findSimilarSQL = `
WITH scored AS (
    SELECT id, room_id, transcription, embedding, audio_digest, mime_type, created_at,
           1 - (embedding <=> $2) AS similarity
    FROM audio_chunks
    WHERE room_id = $1
)
SELECT id::text, room_id::text, transcription, embedding, audio_digest, mime_type, created_at, similarity
FROM scored
WHERE similarity > $3 AND similarity <> 'NaN'::float8
ORDER BY similarity DESC, id ASC
LIMIT $4`
)

// ChunkRepository implements storage.ChunkRepository for PostgreSQL.
type ChunkRepository struct {
	pool *pgxpool.Pool
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// AddChunk stores a chunk in a single INSERT.
func (r *ChunkRepository) AddChunk(ctx context.Context, chunk *core.AudioChunk) (*core.AudioChunk, error) {
	if err := core.ValidateAudioChunk(chunk); err != nil {
		return nil, err
	}
	if chunk.ID == "" {
		chunk.ID = core.NewID()
	}
	if chunk.CreatedAt.IsZero() {
		chunk.CreatedAt = time.Now().UTC()
	}
	id, err := toUUID(chunk.ID)
	if err != nil {
		return nil, err
	}
	roomID, err := toUUID(chunk.RoomID)
	if err != nil {
		return nil, err
	}

	_, err = r.pool.Exec(ctx, insertChunkSQL,
		id, roomID, chunk.Transcription, pgvector.NewVector(chunk.Embedding),
		chunk.AudioDigest, chunk.MimeType, chunk.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return chunk, nil
}

// GetChunk retrieves a single chunk by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id core.ID) (*core.AudioChunk, error) {
	key, err := uuid.Parse(string(id))
	if err != nil {
		return nil, storage.ErrNotFound
	}

	var chunk core.AudioChunk
	var chunkID, roomID string
	var embedding pgvector.Vector
	err = r.pool.QueryRow(ctx, getChunkSQL, key).Scan(
		&chunkID, &roomID, &chunk.Transcription, &embedding,
		&chunk.AudioDigest, &chunk.MimeType, &chunk.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	chunk.ID = core.ID(chunkID)
	chunk.RoomID = core.ID(roomID)
	chunk.Embedding = embedding.Slice()
	chunk.CreatedAt = chunk.CreatedAt.UTC()
	return &chunk, nil
}

// HasDigest reports whether the room holds a chunk with the given digest.
func (r *ChunkRepository) HasDigest(ctx context.Context, roomID core.ID, digest string) (bool, error) {
	key, err := uuid.Parse(string(roomID))
	if err != nil {
		return false, nil
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, hasDigestSQL, key, digest).Scan(&exists); err != nil {
		return false, mapError(err)
	}
	return exists, nil
}

// FindSimilar runs the room-scoped similarity query on the server.
func (r *ChunkRepository) FindSimilar(ctx context.Context, roomID core.ID, vector []float32, query storage.SimilarityQuery) ([]*core.ScoredChunk, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", storage.ErrInvalidQuery)
	}
	key, err := uuid.Parse(string(roomID))
	if err != nil {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, findSimilarSQL, key, pgvector.NewVector(vector), query.MinSimilarity, query.Limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var results []*core.ScoredChunk
	for rows.Next() {
		var chunk core.AudioChunk
		var chunkID, chunkRoom string
		var embedding pgvector.Vector
		var similarity float64
		err := rows.Scan(&chunkID, &chunkRoom, &chunk.Transcription, &embedding,
			&chunk.AudioDigest, &chunk.MimeType, &chunk.CreatedAt, &similarity)
		if err != nil {
			return nil, err
		}
		chunk.ID = core.ID(chunkID)
		chunk.RoomID = core.ID(chunkRoom)
		chunk.Embedding = embedding.Slice()
		chunk.CreatedAt = chunk.CreatedAt.UTC()
		results = append(results, &core.ScoredChunk{Chunk: &chunk, Score: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return results, nil
}
