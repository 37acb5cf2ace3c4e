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
	insertRoomSQL = `INSERT INTO rooms (id, name, description, created_at) VALUES ($1, $2, $3, $4)`

	getRoomSQL = `SELECT id::text, name, description, created_at FROM rooms WHERE id = $1`

	listRoomsSQL = `
SELECT r.id::text, r.name, r.description, r.created_at, count(q.id)
FROM rooms r
LEFT JOIN questions q ON q.room_id = r.id
GROUP BY r.id
ORDER BY r.created_at DESC, r.id ASC`
)

// RoomRepository implements storage.RoomRepository for PostgreSQL.
type RoomRepository struct {
	pool *pgxpool.Pool
}

var _ storage.RoomRepository = (*RoomRepository)(nil)

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
	id, err := toUUID(room.ID)
	if err != nil {
		return nil, err
	}

	if _, err := r.pool.Exec(ctx, insertRoomSQL, id, room.Name, room.Description, room.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return room, nil
}

// GetRoom retrieves a room by ID.
func (r *RoomRepository) GetRoom(ctx context.Context, id core.ID) (*core.Room, error) {
	key, err := uuid.Parse(string(id))
	if err != nil {
		return nil, storage.ErrNotFound
	}

	var room core.Room
	var roomID string
	err = r.pool.QueryRow(ctx, getRoomSQL, key).Scan(&roomID, &room.Name, &room.Description, &room.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	room.ID = core.ID(roomID)
	room.CreatedAt = room.CreatedAt.UTC()
	return &room, nil
}

// ListRooms returns every room with its question count, newest first.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]*core.RoomSummary, error) {
	rows, err := r.pool.Query(ctx, listRoomsSQL)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var results []*core.RoomSummary
	for rows.Next() {
		var summary core.RoomSummary
		var roomID string
		var count int64
		if err := rows.Scan(&roomID, &summary.Name, &summary.Description, &summary.CreatedAt, &count); err != nil {
			return nil, err
		}
		summary.ID = core.ID(roomID)
		summary.CreatedAt = summary.CreatedAt.UTC()
		summary.QuestionsCount = int(count)
		results = append(results, &summary)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return results, nil
}
