package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/auditorium/ai"
	"github.com/poiesic/auditorium/core"
	"github.com/poiesic/auditorium/storage"
)

// Searcher finds the chunks of a room relevant to a question.
type Searcher struct {
	chunks           storage.ChunkRepository
	embedder         ai.Embedder
	query            storage.SimilarityQuery
	embeddingTimeout time.Duration
	searchTimeout    time.Duration
	logger           *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithSimilarityQuery replaces the default threshold and limit.
func WithSimilarityQuery(query storage.SimilarityQuery) Option {
	return func(s *Searcher) error {
		if err := query.Validate(); err != nil {
			return err
		}
		s.query = query
		return nil
	}
}

// WithEmbeddingTimeout bounds the question embedding call.
// Zero disables the bound.
func WithEmbeddingTimeout(d time.Duration) Option {
	return func(s *Searcher) error {
		if d < 0 {
			return fmt.Errorf("embedding timeout must not be negative, got %s", d)
		}
		s.embeddingTimeout = d
		return nil
	}
}

// WithSearchTimeout bounds the vector store query.
// Zero disables the bound.
func WithSearchTimeout(d time.Duration) Option {
	return func(s *Searcher) error {
		if d < 0 {
			return fmt.Errorf("search timeout must not be negative, got %s", d)
		}
		s.searchTimeout = d
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(chunks storage.ChunkRepository, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		chunks:   chunks,
		embedder: embedder,
		query:    storage.DefaultSimilarityQuery(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher")

	return s, nil
}

// Query returns the similarity query the searcher applies.
func (s *Searcher) Query() storage.SimilarityQuery {
	return s.query
}

// FindRelevant returns the chunks of roomID that ground an answer to
// question, best first. An empty result is not an error.
func (s *Searcher) FindRelevant(ctx context.Context, roomID core.ID, question string) ([]*core.ScoredChunk, error) {
	return s.FindRelevantWithMonitor(ctx, roomID, question, nil)
}

// FindRelevantWithMonitor is FindRelevant with a monitor receiving a
// callback at each stage.
func (s *Searcher) FindRelevantWithMonitor(ctx context.Context, roomID core.ID, question string, monitor SearchMonitor) ([]*core.ScoredChunk, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(roomID, question)

	embedding, err := s.embed(ctx, question)
	if err != nil {
		s.logger.Error("error generating embedding for question", "room_id", roomID, "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrEmbedding, err)
	}
	monitor.AfterEmbedding(len(embedding))

	results, err := s.FindByVector(ctx, roomID, embedding)
	if err != nil {
		return nil, err
	}
	monitor.AfterVectorSearch(results)
	monitor.Finish(results)

	return results, nil
}

// FindByVector runs the similarity query for an already embedded question.
func (s *Searcher) FindByVector(ctx context.Context, roomID core.ID, embedding []float32) ([]*core.ScoredChunk, error) {
	searchCtx, cancel := withOptionalTimeout(ctx, s.searchTimeout)
	defer cancel()

	results, err := s.chunks.FindSimilar(searchCtx, roomID, embedding, s.query)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "room_id", roomID, "err", err)
		return nil, fmt.Errorf("%w: similarity search failed: %w", core.ErrPersistence, err)
	}
	s.logger.Debug("similarity search complete", "room_id", roomID, "hits", len(results))
	return results, nil
}

func (s *Searcher) embed(ctx context.Context, question string) ([]float32, error) {
	embedCtx, cancel := withOptionalTimeout(ctx, s.embeddingTimeout)
	defer cancel()

	embedding, err := s.embedder.EmbedText(embedCtx, question)
	if err != nil {
		return nil, err
	}
	if len(embedding) == 0 {
		return nil, core.ErrEmptyEmbedding
	}
	return embedding, nil
}

// Passages returns the chunk transcriptions in rank order.
func Passages(results []*core.ScoredChunk) []string {
	passages := make([]string, 0, len(results))
	for _, r := range results {
		passages = append(passages, r.Chunk.Transcription)
	}
	return passages
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
