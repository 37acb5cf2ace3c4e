package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/poiesic/auditorium/core"
	"github.com/poiesic/auditorium/ingestion"
	"github.com/poiesic/auditorium/storage"
)

// Config holds configuration for an import.
type Config struct {
	// BatchSize is the number of files read into memory at once
	BatchSize int

	// ReportInterval is how often to report progress (number of files)
	ReportInterval int

	// MaxAttempts is the maximum number of attempts per file
	MaxAttempts int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 1,
		MaxAttempts:    3,
		RetryDelay:     2 * time.Second,
	}
}

// Summary reports the outcome of an import.
type Summary struct {
	Total    int
	Ingested int
	Skipped  int
	Failed   int
	Elapsed  time.Duration
}

// Importer ingests audio directories into a room.
type Importer struct {
	chunks   storage.ChunkRepository
	pipeline *ingestion.Pipeline
	config   *Config
	progress io.Writer
	logger   *slog.Logger
}

// NewImporter creates a new importer.
// progress: where to write progress output (typically os.Stderr)
func NewImporter(chunks storage.ChunkRepository, pipeline *ingestion.Pipeline, config *Config, progress io.Writer) (*Importer, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxAttempts <= 0 {
		return nil, ErrInvalidMaxAttempts
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Importer{
		chunks:   chunks,
		pipeline: pipeline,
		config:   config,
		progress: progress,
		logger:   slog.Default().With("component", "importer"),
	}, nil
}

// Run ingests every audio file under dir into roomID.
// Failed files do not stop the import; their errors are joined into the
// returned error.
func (im *Importer) Run(ctx context.Context, roomID string, dir string) (*Summary, error) {
	id, err := core.ValidateRoomID(roomID)
	if err != nil {
		return nil, err
	}

	iterator := NewFileIterator(dir, im.config.BatchSize)
	files, err := iterator.Files()
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	if len(files) == 0 {
		fmt.Fprintf(im.progress, "No audio files found in %s\n", dir)
		return nil, ErrNoAudioFiles
	}

	fmt.Fprintf(im.progress, "Starting import of %d files into room %s\n", len(files), id)

	tracker := NewProgressTracker(im.progress, len(files), im.config.ReportInterval)
	tracker.Start()

	summary := &Summary{Total: len(files)}
	var (
		failures []error
		ingested = make(map[string]bool)
	)
	fail := func(path string, err error) {
		summary.Failed++
		failures = append(failures, fmt.Errorf("%s: %w", path, err))
		tracker.Failed()
	}
	skip := func(path string) {
		im.logger.Debug("skipping already ingested file", "path", path)
		summary.Skipped++
		tracker.Skipped()
	}

	err = iterator.ForEach(ctx, func(batch []AudioFile) error {
		var (
			pending    []pendingFile
			duplicates []pendingFile
			queued     = make(map[string]int)
		)
		for _, file := range batch {
			audio, err := os.ReadFile(file.Path)
			if err != nil {
				fail(file.Path, err)
				continue
			}

			pf := pendingFile{file: file, digest: core.AudioDigest(audio), audio: audio}
			if _, ok := queued[pf.digest]; ok {
				duplicates = append(duplicates, pf)
				continue
			}
			stored, err := im.alreadyIngested(ctx, id, pf.digest, ingested)
			if err != nil {
				return fmt.Errorf("failed to check %s: %w", file.Path, err)
			}
			if stored {
				skip(file.Path)
				continue
			}
			queued[pf.digest] = len(pending)
			pending = append(pending, pf)
		}

		errs := im.ingestBatch(ctx, id, pending)
		for i, pf := range pending {
			if errs[i] != nil {
				fail(pf.file.Path, errs[i])
				continue
			}
			ingested[pf.digest] = true
			summary.Ingested++
			tracker.Ingested()
		}
		// A copy of a file in the same batch shares its outcome.
		for _, dup := range duplicates {
			first := pending[queued[dup.digest]]
			if err := errs[queued[dup.digest]]; err != nil {
				fail(dup.file.Path, fmt.Errorf("copy of %s: %w", first.file.Path, err))
				continue
			}
			skip(dup.file.Path)
		}
		return nil
	})

	tracker.Finish()
	summary.Elapsed = tracker.Elapsed()
	if err != nil {
		return summary, err
	}

	fmt.Fprintf(im.progress, "Import complete. %d ingested, %d skipped, %d failed in %v\n",
		summary.Ingested, summary.Skipped, summary.Failed, summary.Elapsed.Round(time.Second))

	return summary, errors.Join(failures...)
}

// pendingFile is an audio file read into memory and awaiting ingestion.
type pendingFile struct {
	file   AudioFile
	digest string
	audio  []byte
}

// alreadyIngested checks the files ingested earlier in this run, then the store.
func (im *Importer) alreadyIngested(ctx context.Context, roomID core.ID, digest string, ingested map[string]bool) (bool, error) {
	if ingested[digest] {
		return true, nil
	}
	return im.chunks.HasDigest(ctx, roomID, digest)
}

// ingestBatch ingests files through the pipeline pool and returns one
// error per file. Transient failures are retried together as a smaller
// batch, with backoff between attempts.
func (im *Importer) ingestBatch(ctx context.Context, roomID core.ID, files []pendingFile) []error {
	errs := make([]error, len(files))
	if len(files) == 0 {
		return errs
	}
	remaining := make([]int, len(files))
	for i := range remaining {
		remaining[i] = i
	}

	err := RetryIf(ctx, func() error {
		items := make([]ingestion.BatchItem, len(remaining))
		for j, i := range remaining {
			items[j] = ingestion.BatchItem{Name: files[i].file.Path, Audio: files[i].audio, MimeType: files[i].file.MimeType}
		}

		var (
			retry     []int
			transient []error
		)
		for j, res := range im.pipeline.IngestBatch(ctx, roomID.String(), items) {
			i := remaining[j]
			errs[i] = res.Err
			if res.Err == nil {
				im.logger.Debug("file ingested", "path", res.Name, "chunk_id", res.ChunkID)
				continue
			}
			im.logger.Warn("ingestion attempt failed", "path", res.Name, "err", res.Err)
			if IsTransient(res.Err) {
				retry = append(retry, i)
				transient = append(transient, res.Err)
			}
		}
		remaining = retry
		return errors.Join(transient...)
	}, im.config.MaxAttempts, im.config.RetryDelay, IsTransient)

	// Cancelled between attempts: the files still queued never ran again.
	if err != nil && ctx.Err() != nil {
		for _, i := range remaining {
			errs[i] = err
		}
	}
	return errs
}
