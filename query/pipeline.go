package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/auditorium/ai"
	"github.com/poiesic/auditorium/core"
	"github.com/poiesic/auditorium/search"
	"github.com/poiesic/auditorium/storage"
)

// Default stage timeouts.
const (
	DefaultEmbeddingTimeout   = 30 * time.Second
	DefaultSynthesisTimeout   = 60 * time.Second
	DefaultPersistenceTimeout = 10 * time.Second
)

// Pipeline answers questions from the chunks of a room.
type Pipeline struct {
	questions          storage.QuestionRepository
	searcher           *search.Searcher
	synthesizer        ai.AnswerSynthesizer
	similarity         storage.SimilarityQuery
	embeddingTimeout   time.Duration
	synthesisTimeout   time.Duration
	persistenceTimeout time.Duration
	monitor            search.SearchMonitor
	logger             *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithSimilarityQuery replaces the default 0.7 / top-3 retrieval policy.
func WithSimilarityQuery(q storage.SimilarityQuery) Option {
	return func(p *Pipeline) error {
		if err := q.Validate(); err != nil {
			return err
		}
		p.similarity = q
		return nil
	}
}

// WithEmbeddingTimeout bounds the question embedding call. Zero disables the bound.
func WithEmbeddingTimeout(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d < 0 {
			return fmt.Errorf("embedding timeout must not be negative, got %s", d)
		}
		p.embeddingTimeout = d
		return nil
	}
}

// WithSynthesisTimeout bounds the answer synthesis call. Zero disables the bound.
func WithSynthesisTimeout(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d < 0 {
			return fmt.Errorf("synthesis timeout must not be negative, got %s", d)
		}
		p.synthesisTimeout = d
		return nil
	}
}

// WithPersistenceTimeout bounds the similarity search and the question
// write. Zero disables the bound.
func WithPersistenceTimeout(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d < 0 {
			return fmt.Errorf("persistence timeout must not be negative, got %s", d)
		}
		p.persistenceTimeout = d
		return nil
	}
}

// WithMonitor observes every retrieval.
func WithMonitor(monitor search.SearchMonitor) Option {
	return func(p *Pipeline) error {
		p.monitor = monitor
		return nil
	}
}

// NewPipeline creates a query pipeline over store.
func NewPipeline(store storage.Store, provider ai.AIProvider, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	p := &Pipeline{
		questions:          store.Questions(),
		synthesizer:        provider.Synthesizer(),
		similarity:         storage.DefaultSimilarityQuery(),
		embeddingTimeout:   DefaultEmbeddingTimeout,
		synthesisTimeout:   DefaultSynthesisTimeout,
		persistenceTimeout: DefaultPersistenceTimeout,
		logger:             slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	searcher, err := search.NewSearcher(store.Chunks(), provider.Embedder(),
		search.WithLogger(p.logger),
		search.WithSimilarityQuery(p.similarity),
		search.WithEmbeddingTimeout(p.embeddingTimeout),
		search.WithSearchTimeout(p.persistenceTimeout),
	)
	if err != nil {
		return nil, err
	}
	p.searcher = searcher
	p.logger = p.logger.With("component", "query")

	return p, nil
}

// Ask answers question from the chunks of roomID and persists the
// exchange. The returned Question has a nil Answer when no chunk of the
// room passed the similarity threshold.
//
// Errors wrap exactly one core error kind. On error no Question is
// written.
func (p *Pipeline) Ask(ctx context.Context, roomID string, question string) (*core.Question, error) {
	id, err := core.ValidateRoomID(roomID)
	if err != nil {
		return nil, err
	}
	if err := core.ValidateQuestionText(question); err != nil {
		return nil, err
	}
	question = strings.TrimSpace(question)

	results, err := p.searcher.FindRelevantWithMonitor(ctx, id, question, p.monitor)
	if err != nil {
		return nil, err
	}

	var answer *string
	if len(results) > 0 {
		text, err := p.synthesize(ctx, question, search.Passages(results))
		if err != nil {
			p.logger.Error("error synthesizing answer", "room_id", id, "err", err)
			return nil, err
		}
		answer = &text
	} else {
		p.logger.Debug("no chunk passed the similarity threshold", "room_id", id)
	}

	saved, err := p.persist(ctx, &core.Question{
		RoomID:   id,
		Question: question,
		Answer:   answer,
	})
	if err != nil {
		p.logger.Error("error storing question", "room_id", id, "err", err)
		return nil, err
	}

	p.logger.Info("question answered", "room_id", id, "question_id", saved.ID,
		"passages", len(results), "answered", saved.Answered())
	return saved, nil
}

func (p *Pipeline) synthesize(ctx context.Context, question string, passages []string) (string, error) {
	ctx, cancel := stageContext(ctx, p.synthesisTimeout)
	defer cancel()

	text, err := p.synthesizer.Synthesize(ctx, question, passages)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrSynthesis, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: %w", core.ErrSynthesis, core.ErrEmptyAnswer)
	}
	return text, nil
}

func (p *Pipeline) persist(ctx context.Context, q *core.Question) (*core.Question, error) {
	ctx, cancel := stageContext(ctx, p.persistenceTimeout)
	defer cancel()

	saved, err := p.questions.AddQuestion(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to store question: %w", core.ErrPersistence, err)
	}
	return saved, nil
}

// stageContext bounds a stage. Zero disables the bound.
func stageContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
