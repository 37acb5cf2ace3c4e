package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/poiesic/auditorium/core"
	"github.com/poiesic/auditorium/storage"
)

// PostgreSQL error codes mapped to storage errors.
const (
	foreignKeyViolation = "23503"
	uniqueViolation     = "23505"
)

// mapError translates driver errors into storage sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case foreignKeyViolation:
			return fmt.Errorf("%w: %s", storage.ErrNotFound, pgErr.ConstraintName)
		case uniqueViolation:
			return fmt.Errorf("%w: %s", storage.ErrDuplicateKey, pgErr.ConstraintName)
		}
	}
	return err
}

// toUUID converts a domain ID into the driver's uuid representation.
func toUUID(id core.ID) (uuid.UUID, error) {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
	}
	return u, nil
}
