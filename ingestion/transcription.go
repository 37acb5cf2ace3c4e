package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/auditorium/ai"
	"github.com/poiesic/auditorium/core"
)

// transcriptionProcessor turns the audio into text.
type transcriptionProcessor struct {
	transcriber ai.Transcriber
	timeout     time.Duration
	logger      *slog.Logger
}

var _ processor = (*transcriptionProcessor)(nil)

func newTranscriptionProcessor(transcriber ai.Transcriber, timeout time.Duration, logger *slog.Logger) (processor, error) {
	if transcriber == nil {
		return nil, fmt.Errorf("transcriber required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &transcriptionProcessor{
		transcriber: transcriber,
		timeout:     timeout,
		logger:      logger.With("processor", "transcription"),
	}, nil
}

func (tp *transcriptionProcessor) process(ctx context.Context, it *item) error {
	ctx, cancel := stageContext(ctx, tp.timeout)
	defer cancel()

	tp.logger.Debug("transcribing audio", "room_id", it.roomID, "bytes", len(it.audio))
	text, err := tp.transcriber.Transcribe(ctx, it.audio, it.mimeType)
	if err != nil {
		tp.logger.Error("error transcribing audio", "room_id", it.roomID, "err", err)
		return fmt.Errorf("%w: %w", core.ErrTranscription, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: %w", core.ErrTranscription, core.ErrEmptyTranscription)
	}
	it.chunk.Transcription = text
	return nil
}

func (*transcriptionProcessor) kind() error {
	return core.ErrTranscription
}
