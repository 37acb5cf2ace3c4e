package gemini

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/auditorium/ai"
	"github.com/tmc/langchaingo/llms"
)

// Synthesizer implements ai.AnswerSynthesizer with a Gemini chat model.
type Synthesizer struct {
	client   generator
	model    string
	language string
	timeout  time.Duration
	logger   *slog.Logger
}

func newSynthesizer(client generator, config *ai.Config) *Synthesizer {
	return &Synthesizer{
		client:   client,
		model:    config.ChatModel,
		language: config.Language,
		timeout:  config.Timeout,
		logger:   slog.Default().With("component", "gemini-synthesizer"),
	}
}

// Synthesize answers question from passages.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, passages []string) (string, error) {
	s.logger.Debug("synthesizing answer", "passages", len(passages))

	prompt := ai.BuildAnswerPrompt(question, passages, s.language)
	text, err := generate(ctx, s.client, s.timeout, s.model, llms.TextPart(prompt))
	if err != nil {
		s.logger.Error("failed to synthesize answer", "err", err)
		return "", err
	}
	return strings.TrimSpace(text), nil
}
