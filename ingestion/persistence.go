package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/auditorium/core"
	"github.com/poiesic/auditorium/storage"
)

// persistenceProcessor writes the finished chunk in one atomic operation.
type persistenceProcessor struct {
	chunks  storage.ChunkRepository
	timeout time.Duration
	logger  *slog.Logger
}

var _ processor = (*persistenceProcessor)(nil)

func newPersistenceProcessor(chunks storage.ChunkRepository, timeout time.Duration, logger *slog.Logger) (processor, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &persistenceProcessor{
		chunks:  chunks,
		timeout: timeout,
		logger:  logger.With("processor", "persistence"),
	}, nil
}

func (pp *persistenceProcessor) process(ctx context.Context, it *item) error {
	ctx, cancel := stageContext(ctx, pp.timeout)
	defer cancel()

	added, err := pp.chunks.AddChunk(ctx, it.chunk)
	if err != nil {
		pp.logger.Error("error storing audio chunk", "room_id", it.roomID, "err", err)
		return fmt.Errorf("%w: failed to store audio chunk: %w", core.ErrPersistence, err)
	}
	it.chunk = added
	return nil
}

func (*persistenceProcessor) kind() error {
	return core.ErrPersistence
}
