package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/auditorium/ai"
	"github.com/tmc/langchaingo/llms/googleai"
)

// Provider implements ai.AIProvider on one googleai client.
type Provider struct {
	client      *googleai.GoogleAI
	transcriber *Transcriber
	embedder    *Embedder
	synthesizer *Synthesizer
	logger      *slog.Logger
}

// NewProvider creates a Gemini-backed provider.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction.
func NewProvider(ctx context.Context, config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Provider != ai.ProviderGemini {
		return nil, fmt.Errorf("gemini provider cannot serve %q config", config.Provider)
	}

	client, err := googleai.New(ctx,
		googleai.WithAPIKey(config.APIKey),
		googleai.WithDefaultModel(config.ChatModel),
		googleai.WithDefaultEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Provider{
		client:      client,
		transcriber: newTranscriber(client, config),
		embedder:    newEmbedder(client, config.Timeout),
		synthesizer: newSynthesizer(client, config),
		logger:      slog.Default().With("component", "gemini-provider"),
	}, nil
}

func (p *Provider) Transcriber() ai.Transcriber {
	return p.transcriber
}

func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *Provider) Synthesizer() ai.AnswerSynthesizer {
	return p.synthesizer
}

// Close releases the underlying gRPC connections.
func (p *Provider) Close() error {
	p.logger.Debug("closing Gemini provider")
	return p.client.Close()
}
