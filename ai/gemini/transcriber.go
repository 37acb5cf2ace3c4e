package gemini

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/auditorium/ai"
	"github.com/tmc/langchaingo/llms"
)

// Transcriber implements ai.Transcriber by sending the audio inline to a
// multimodal Gemini model.
type Transcriber struct {
	client  generator
	model   string
	prompt  string
	timeout time.Duration
	logger  *slog.Logger
}

func newTranscriber(client generator, config *ai.Config) *Transcriber {
	return &Transcriber{
		client:  client,
		model:   config.TranscriptionModel,
		prompt:  ai.BuildTranscriptionPrompt(config.Language),
		timeout: config.Timeout,
		logger:  slog.Default().With("component", "gemini-transcriber"),
	}
}

// Transcribe returns the transcript of audio.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	t.logger.Debug("transcribing audio", "bytes", len(audio), "mime_type", mimeType)

	text, err := generate(ctx, t.client, t.timeout, t.model,
		llms.TextPart(t.prompt),
		llms.BinaryPart(mimeType, audio),
	)
	if err != nil {
		t.logger.Error("failed to transcribe audio", "err", err)
		return "", err
	}
	return strings.TrimSpace(text), nil
}
