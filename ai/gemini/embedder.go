package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Embedder implements ai.Embedder with the Gemini embedding model.
type Embedder struct {
	client  embeddingClient
	timeout time.Duration
	logger  *slog.Logger
}

func newEmbedder(client embeddingClient, timeout time.Duration) *Embedder {
	return &Embedder{
		client:  client,
		timeout: timeout,
		logger:  slog.Default().With("component", "gemini-embedder"),
	}
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts generates vector embeddings for multiple text strings in a batch.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	vectors, err := e.client.CreateEmbedding(ctx, texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors))
	}
	return vectors, nil
}
