package openai

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/poiesic/auditorium/ai"
)

// Transcriber implements ai.Transcriber with the Whisper transcription API.
type Transcriber struct {
	client   openai.Client
	model    string
	language string
	prompt   string
	logger   *slog.Logger
}

func newTranscriber(config *ai.Config) (*Transcriber, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithRequestTimeout(config.Timeout),
		// Callers own the retry policy
		option.WithMaxRetries(0),
	}
	if config.EmbeddingHost != "" {
		opts = append(opts, option.WithBaseURL(config.EmbeddingHost+"/"))
	}

	return &Transcriber{
		client:   openai.NewClient(opts...),
		model:    config.TranscriptionModel,
		language: ai.LanguageCode(config.Language),
		prompt:   ai.BuildTranscriptionPrompt(config.Language),
		logger:   slog.Default().With("component", "openai-transcriber"),
	}, nil
}

// NewTranscriber creates a Whisper-backed transcriber.
//
// Returns ai.Transcriber interface to enforce abstraction.
func NewTranscriber(config *ai.Config) (ai.Transcriber, error) {
	return newTranscriber(config)
}

// Transcribe uploads audio and returns the recognized text.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	t.logger.Debug("transcribing audio", "bytes", len(audio), "mime_type", mimeType)

	res, err := t.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:     openai.File(bytes.NewReader(audio), audioFilename(mimeType), mimeType),
		Model:    openai.AudioModel(t.model),
		Language: openai.String(t.language),
		Prompt:   openai.String(t.prompt),
	})
	if err != nil {
		t.logger.Error("failed to transcribe audio", "err", err)
		return "", err
	}
	return scrubParagraphs(res.Text), nil
}
