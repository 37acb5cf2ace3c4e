package openai

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/auditorium/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Synthesizer implements ai.AnswerSynthesizer with an OpenAI chat model.
type Synthesizer struct {
	client   llms.Model
	language string
	timeout  time.Duration
	logger   *slog.Logger
}

func newSynthesizer(config *ai.Config) (*Synthesizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(clientOptions(config, openai.WithModel(config.ChatModel))...)
	if err != nil {
		return nil, err
	}

	return &Synthesizer{
		client:   client,
		language: config.Language,
		timeout:  config.Timeout,
		logger:   slog.Default().With("component", "openai-synthesizer"),
	}, nil
}

// NewSynthesizer creates an answer synthesizer.
//
// Returns ai.AnswerSynthesizer interface to enforce abstraction.
func NewSynthesizer(config *ai.Config) (ai.AnswerSynthesizer, error) {
	return newSynthesizer(config)
}

// Synthesize answers question from passages.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, passages []string) (string, error) {
	s.logger.Debug("synthesizing answer", "passages", len(passages))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(ai.BuildAnswerPrompt(question, passages, s.language))},
		},
	}
	response, err := s.client.GenerateContent(ctx, content, llms.WithTemperature(0.2))
	if err != nil {
		s.logger.Error("failed to synthesize answer", "err", err)
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return scrubParagraphs(response.Choices[0].Content), nil
}
