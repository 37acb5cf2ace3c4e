package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// DefaultDimensions matches the text-embedding-004 output size.
const DefaultDimensions = 768

//go:embed schema.sql
var schemaTemplate string

// Schema renders the DDL for embeddings of the given dimensionality.
func Schema(dimensions int) (string, error) {
	if dimensions < 1 {
		return "", fmt.Errorf("embedding dimensions must be positive, got %d", dimensions)
	}
	return strings.ReplaceAll(schemaTemplate, "{{dimensions}}", strconv.Itoa(dimensions)), nil
}

// Migrate creates the pgvector extension, tables and indexes if missing.
// It uses a plain connection because the vector type may not exist yet.
func Migrate(ctx context.Context, databaseURL string, dimensions int) error {
	ddl, err := Schema(dimensions)
	if err != nil {
		return err
	}

	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect for migration: %w", err)
	}
	defer conn.Close(ctx)

	// Without arguments pgx uses the simple protocol, which accepts
	// several statements in one call.
	if _, err := conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
