// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package auditorium answers questions about recorded classes from the
// transcribed audio of each room.
package auditorium

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/poiesic/auditorium/ai"
	"github.com/poiesic/auditorium/ai/gemini"
	"github.com/poiesic/auditorium/ai/openai"
	"github.com/poiesic/auditorium/config"
	"github.com/poiesic/auditorium/core"
	"github.com/poiesic/auditorium/importer"
	"github.com/poiesic/auditorium/ingestion"
	"github.com/poiesic/auditorium/query"
	"github.com/poiesic/auditorium/storage"
	"github.com/poiesic/auditorium/storage/badger"
	"github.com/poiesic/auditorium/storage/postgres"
)

var (
	// ErrStoreRequired is returned when New receives a nil store.
	ErrStoreRequired = errors.New("store is required")

	// ErrProviderRequired is returned when New receives a nil provider.
	ErrProviderRequired = errors.New("AI provider is required")
)

// Service owns the store handle and the AI provider, and runs both
// pipelines over them. Close releases everything it owns.
type Service struct {
	store    storage.Store
	provider ai.AIProvider
	ingest   *ingestion.Pipeline
	query    *query.Pipeline
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*options)

type options struct {
	logger        *slog.Logger
	provider      ai.AIProvider
	ingestionOpts []ingestion.Option
	queryOpts     []query.Option
}

// WithLogger sets the logger shared by the service and its pipelines.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithProvider makes Open use provider instead of building one from the
// configuration. The service takes ownership of it.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithIngestionOptions passes extra options to the ingestion pipeline.
func WithIngestionOptions(opts ...ingestion.Option) Option {
	return func(o *options) {
		o.ingestionOpts = append(o.ingestionOpts, opts...)
	}
}

// WithQueryOptions passes extra options to the query pipeline.
func WithQueryOptions(opts ...query.Option) Option {
	return func(o *options) {
		o.queryOpts = append(o.queryOpts, opts...)
	}
}

// Open builds a Service from the application configuration: it opens the
// configured store, creates the AI provider and wires both pipelines.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	o := applyOptions(opts)

	store, err := OpenStore(ctx, cfg.Storage, o.logger)
	if err != nil {
		return nil, err
	}

	provider := o.provider
	if provider == nil {
		provider, err = NewProvider(ctx, cfg.AIConfig())
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	p := cfg.Pipeline
	ingestionOpts := []ingestion.Option{ingestion.WithPoolSize(p.PoolSize)}
	if p.TranscriptionTimeoutSecs > 0 {
		ingestionOpts = append(ingestionOpts, ingestion.WithTranscriptionTimeout(config.Seconds(p.TranscriptionTimeoutSecs)))
	}
	if p.EmbeddingTimeoutSecs > 0 {
		ingestionOpts = append(ingestionOpts, ingestion.WithEmbeddingTimeout(config.Seconds(p.EmbeddingTimeoutSecs)))
	}
	if p.PersistenceTimeoutSecs > 0 {
		ingestionOpts = append(ingestionOpts, ingestion.WithPersistenceTimeout(config.Seconds(p.PersistenceTimeoutSecs)))
	}

	queryOpts := []query.Option{query.WithSimilarityQuery(p.SimilarityQuery())}
	if p.EmbeddingTimeoutSecs > 0 {
		queryOpts = append(queryOpts, query.WithEmbeddingTimeout(config.Seconds(p.EmbeddingTimeoutSecs)))
	}
	if p.SynthesisTimeoutSecs > 0 {
		queryOpts = append(queryOpts, query.WithSynthesisTimeout(config.Seconds(p.SynthesisTimeoutSecs)))
	}
	if p.PersistenceTimeoutSecs > 0 {
		queryOpts = append(queryOpts, query.WithPersistenceTimeout(config.Seconds(p.PersistenceTimeoutSecs)))
	}

	opts = append([]Option{
		WithIngestionOptions(ingestionOpts...),
		WithQueryOptions(queryOpts...),
	}, opts...)
	return New(store, provider, opts...)
}

// New creates a Service over an open store and provider. The service
// takes ownership of both; on error they are closed.
func New(store storage.Store, provider ai.AIProvider, opts ...Option) (*Service, error) {
	if store == nil {
		if provider != nil {
			provider.Close()
		}
		return nil, ErrStoreRequired
	}
	if provider == nil {
		store.Close()
		return nil, ErrProviderRequired
	}

	o := applyOptions(opts)
	s := &Service{
		store:    store,
		provider: provider,
		logger:   o.logger.With("component", "service"),
	}

	ingest, err := ingestion.NewPipeline(store.Chunks(), provider,
		append([]ingestion.Option{ingestion.WithLogger(o.logger)}, o.ingestionOpts...)...)
	if err != nil {
		s.closeResources()
		return nil, fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	s.ingest = ingest

	q, err := query.NewPipeline(store, provider,
		append([]query.Option{query.WithLogger(o.logger)}, o.queryOpts...)...)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create query pipeline: %w", err)
	}
	s.query = q

	return s, nil
}

func applyOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// OpenStore opens the store selected by cfg.
func OpenStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (storage.Store, error) {
	switch cfg.Type {
	case config.StoragePostgres:
		opts := []postgres.Option{postgres.WithLogger(logger)}
		if cfg.MaxConns > 0 {
			opts = append(opts, postgres.WithMaxConns(cfg.MaxConns))
		}
		if cfg.Migrate {
			opts = append(opts, postgres.WithMigrate(cfg.Dimensions))
		}
		store, err := postgres.Open(ctx, cfg.DatabaseURL, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return store, nil
	case config.StorageBadger:
		store, err := badger.OpenStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger store at %s: %w", cfg.DataDir, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// NewProvider creates the AI provider selected by cfg.
func NewProvider(ctx context.Context, cfg *ai.Config) (ai.AIProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ai.ProviderGemini:
		return gemini.NewProvider(ctx, cfg)
	case ai.ProviderOpenAI:
		return openai.NewProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// Store exposes the underlying store.
func (s *Service) Store() storage.Store {
	return s.store
}

// Provider exposes the AI provider.
func (s *Service) Provider() ai.AIProvider {
	return s.provider
}

// CreateRoom creates a room.
func (s *Service) CreateRoom(ctx context.Context, name, description string) (*core.Room, error) {
	room, err := s.store.Rooms().CreateRoom(ctx, &core.Room{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	})
	if err != nil {
		if errors.Is(err, core.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to create room: %w", core.ErrPersistence, err)
	}
	s.logger.Info("room created", "room_id", room.ID, "name", room.Name)
	return room, nil
}

// ListRooms returns every room with its question count, newest first.
func (s *Service) ListRooms(ctx context.Context) ([]*core.RoomSummary, error) {
	rooms, err := s.store.Rooms().ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list rooms: %w", core.ErrPersistence, err)
	}
	return rooms, nil
}

// ListQuestions returns the questions of a room, newest first.
// An unknown room is a persistence error wrapping storage.ErrNotFound.
func (s *Service) ListQuestions(ctx context.Context, roomID string) ([]*core.Question, error) {
	id, err := core.ValidateRoomID(roomID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Rooms().GetRoom(ctx, id); err != nil {
		return nil, fmt.Errorf("%w: failed to load room: %w", core.ErrPersistence, err)
	}
	questions, err := s.store.Questions().ListQuestions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list questions: %w", core.ErrPersistence, err)
	}
	return questions, nil
}

// Ingest runs the ingestion pipeline on one audio submission.
func (s *Service) Ingest(ctx context.Context, roomID string, audio []byte, mimeType string) (core.ID, error) {
	return s.ingest.Ingest(ctx, roomID, audio, mimeType)
}

// Ask runs the query pipeline.
func (s *Service) Ask(ctx context.Context, roomID string, question string) (*core.Question, error) {
	return s.query.Ask(ctx, roomID, question)
}

// NewImporter creates a bulk importer over the service's ingestion pipeline.
func (s *Service) NewImporter(cfg *importer.Config, progress io.Writer) (*importer.Importer, error) {
	return importer.NewImporter(s.store.Chunks(), s.ingest, cfg, progress)
}

// Close releases the worker pool, the AI provider and the store handle.
func (s *Service) Close() error {
	if s.ingest != nil {
		s.ingest.Release()
	}
	return s.closeResources()
}

func (s *Service) closeResources() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing store", "err", err)
		return err
	}
	return nil
}
