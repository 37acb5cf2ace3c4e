package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/auditorium/ai"
	"github.com/poiesic/auditorium/core"
)

// embeddingProcessor generates the embedding of a transcript.
type embeddingProcessor struct {
	embedder ai.Embedder
	timeout  time.Duration
	logger   *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(embedder ai.Embedder, timeout time.Duration, logger *slog.Logger) (processor, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		embedder: embedder,
		timeout:  timeout,
		logger:   logger.With("processor", "embeddings"),
	}, nil
}

func (ep *embeddingProcessor) process(ctx context.Context, it *item) error {
	ctx, cancel := stageContext(ctx, ep.timeout)
	defer cancel()

	ep.logger.Debug("generating embedding for transcript", "room_id", it.roomID, "length", len(it.chunk.Transcription))
	embedding, err := ep.embedder.EmbedText(ctx, it.chunk.Transcription)
	if err != nil {
		ep.logger.Error("error generating embedding", "room_id", it.roomID, "err", err)
		return fmt.Errorf("%w: %w", core.ErrEmbedding, err)
	}
	if len(embedding) == 0 {
		return fmt.Errorf("%w: %w", core.ErrEmbedding, core.ErrEmptyEmbedding)
	}
	it.chunk.Embedding = embedding
	return nil
}

func (*embeddingProcessor) kind() error {
	return core.ErrEmbedding
}
