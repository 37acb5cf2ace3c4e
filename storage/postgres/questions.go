package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/poiesic/auditorium/core"
	"github.com/poiesic/auditorium/storage"
)

const (
	insertQuestionSQL = `INSERT INTO questions (id, room_id, question, answer, created_at) VALUES ($1, $2, $3, $4, $5)`

	listQuestionsSQL = `
SELECT id::text, room_id::text, question, answer, created_at
FROM questions
WHERE room_id = $1
ORDER BY created_at DESC, id DESC`
)

// QuestionRepository implements storage.QuestionRepository for PostgreSQL.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

var _ storage.QuestionRepository = (*QuestionRepository)(nil)

// AddQuestion stores a question in a single INSERT. A missing room
// surfaces as a foreign key violation, reported as ErrNotFound.
func (r *QuestionRepository) AddQuestion(ctx context.Context, question *core.Question) (*core.Question, error) {
	if err := core.ValidateQuestion(question); err != nil {
		return nil, err
	}
	if question.ID == "" {
		question.ID = core.NewID()
	}
	if question.CreatedAt.IsZero() {
		question.CreatedAt = time.Now().UTC()
	}
	id, err := toUUID(question.ID)
	if err != nil {
		return nil, err
	}
	roomID, err := toUUID(question.RoomID)
	if err != nil {
		return nil, err
	}

	_, err = r.pool.Exec(ctx, insertQuestionSQL, id, roomID, question.Question, question.Answer, question.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return question, nil
}

// ListQuestions returns the questions of a room, newest first.
func (r *QuestionRepository) ListQuestions(ctx context.Context, roomID core.ID) ([]*core.Question, error) {
	key, err := uuid.Parse(string(roomID))
	if err != nil {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, listQuestionsSQL, key)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var results []*core.Question
	for rows.Next() {
		var q core.Question
		var id, room string
		if err := rows.Scan(&id, &room, &q.Question, &q.Answer, &q.CreatedAt); err != nil {
			return nil, err
		}
		q.ID = core.ID(id)
		q.RoomID = core.ID(room)
		q.CreatedAt = q.CreatedAt.UTC()
		results = append(results, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return results, nil
}
