package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
	"github.com/poiesic/auditorium/storage"
)

// Store implements storage.Store on PostgreSQL with pgvector.
type Store struct {
	pool      *pgxpool.Pool
	logger    *slog.Logger
	rooms     *RoomRepository
	chunks    *ChunkRepository
	questions *QuestionRepository
}

var _ storage.Store = (*Store)(nil)

type storeConfig struct {
	logger     *slog.Logger
	migrate    bool
	dimensions int
	maxConns   int32
}

// Option configures Open.
type Option func(*storeConfig) error

// WithLogger sets the logger. A nil logger selects slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *storeConfig) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithMigrate applies the schema before the pool is opened.
func WithMigrate(dimensions int) Option {
	return func(c *storeConfig) error {
		if dimensions < 1 {
			return fmt.Errorf("embedding dimensions must be positive, got %d", dimensions)
		}
		c.migrate = true
		c.dimensions = dimensions
		return nil
	}
}

// WithMaxConns caps the pool size.
func WithMaxConns(n int32) Option {
	return func(c *storeConfig) error {
		if n < 1 {
			return fmt.Errorf("max connections must be positive, got %d", n)
		}
		c.maxConns = n
		return nil
	}
}

// Open connects to databaseURL and returns a store backed by a pgx pool.
// The vector extension must be installed, either beforehand or by
// passing WithMigrate.
func Open(ctx context.Context, databaseURL string, opts ...Option) (*Store, error) {
	cfg := &storeConfig{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.migrate {
		if err := Migrate(ctx, databaseURL, cfg.dimensions); err != nil {
			return nil, err
		}
	}

	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	if cfg.maxConns > 0 {
		poolCfg.MaxConns = cfg.maxConns
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger := cfg.logger.With("component", "postgres")
	logger.Debug("connected", "max_conns", poolCfg.MaxConns)

	return &Store{
		pool:      pool,
		logger:    logger,
		rooms:     &RoomRepository{pool: pool},
		chunks:    &ChunkRepository{pool: pool},
		questions: &QuestionRepository{pool: pool},
	}, nil
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

// Close releases every pooled connection.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Migrate applies the schema through the pool. It is safe to run
// repeatedly; every statement is idempotent.
func (s *Store) Migrate(ctx context.Context, dimensions int) error {
	ddl, err := Schema(dimensions)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	s.logger.Info("schema applied", "dimensions", dimensions)
	return nil
}
