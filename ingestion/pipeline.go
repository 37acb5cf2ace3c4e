// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/auditorium/ai"
	"github.com/poiesic/auditorium/core"
	"github.com/poiesic/auditorium/storage"
)

// Default stage timeouts.
const (
	DefaultTranscriptionTimeout = 120 * time.Second
	DefaultEmbeddingTimeout     = 30 * time.Second
	DefaultPersistenceTimeout   = 10 * time.Second
)

// Pipeline orchestrates the ingestion of audio into a room.
// It bounds concurrent ingestions with a worker pool.
type Pipeline struct {
	chunks               storage.ChunkRepository
	pool                 *ants.Pool
	stages               []processor
	transcriptionTimeout time.Duration
	embeddingTimeout     time.Duration
	persistenceTimeout   time.Duration
	logger               *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent ingestion.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithTranscriptionTimeout bounds the transcription call. Zero disables the bound.
func WithTranscriptionTimeout(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d < 0 {
			return fmt.Errorf("transcription timeout must not be negative, got %s", d)
		}
		p.transcriptionTimeout = d
		return nil
	}
}

// WithEmbeddingTimeout bounds the embedding call. Zero disables the bound.
func WithEmbeddingTimeout(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d < 0 {
			return fmt.Errorf("embedding timeout must not be negative, got %s", d)
		}
		p.embeddingTimeout = d
		return nil
	}
}

// WithPersistenceTimeout bounds the chunk write. Zero disables the bound.
func WithPersistenceTimeout(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d < 0 {
			return fmt.Errorf("persistence timeout must not be negative, got %s", d)
		}
		p.persistenceTimeout = d
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(chunks storage.ChunkRepository, provider ai.AIProvider, opts ...Option) (*Pipeline, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		chunks:               chunks,
		pool:                 pool,
		transcriptionTimeout: DefaultTranscriptionTimeout,
		embeddingTimeout:     DefaultEmbeddingTimeout,
		persistenceTimeout:   DefaultPersistenceTimeout,
		logger:               slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	// Create processors after options are applied (so they get final config)
	transcription, err := newTranscriptionProcessor(provider.Transcriber(), p.transcriptionTimeout, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	embedding, err := newEmbeddingProcessor(provider.Embedder(), p.embeddingTimeout, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	persistence, err := newPersistenceProcessor(chunks, p.persistenceTimeout, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.stages = []processor{transcription, embedding, persistence}

	return p, nil
}

// Ingest transcribes audio, embeds the transcript and stores the result
// as a chunk of roomID. It returns the new chunk's ID.
//
// Errors wrap exactly one core error kind, except ctx.Err() when ctx
// ends while waiting. Nothing is written unless every stage succeeds.
func (p *Pipeline) Ingest(ctx context.Context, roomID string, audio []byte, mimeType string) (core.ID, error) {
	chunk, err := p.IngestChunk(ctx, roomID, audio, mimeType)
	if err != nil {
		return "", err
	}
	return chunk.ID, nil
}

// IngestChunk is Ingest returning the stored chunk.
func (p *Pipeline) IngestChunk(ctx context.Context, roomID string, audio []byte, mimeType string) (*core.AudioChunk, error) {
	id, err := core.ValidateRoomID(roomID)
	if err != nil {
		return nil, err
	}
	if err := core.ValidateAudio(audio, mimeType); err != nil {
		return nil, err
	}

	it := &item{
		roomID:   id,
		audio:    audio,
		mimeType: mimeType,
		chunk: &core.AudioChunk{
			RoomID:      id,
			AudioDigest: core.AudioDigest(audio),
			MimeType:    mimeType,
		},
	}

	done := make(chan error, 1)
	err = p.pool.Submit(func() {
		done <- p.run(ctx, it)
	})
	if err != nil {
		if errors.Is(err, ants.ErrPoolClosed) {
			return nil, ErrPipelineReleased
		}
		return nil, err
	}
	select {
	case err := <-done:
		if err != nil {
			return nil, err
		}
	case <-ctx.Done():
		select {
		case err := <-done:
			// Finished in the same instant; report what happened.
			if err != nil {
				return nil, err
			}
		default:
			// The worker finishes on its own; done is buffered.
			return nil, ctx.Err()
		}
	}

	p.logger.Info("audio chunk ingested", "room_id", id, "chunk_id", it.chunk.ID, "chars", len(it.chunk.Transcription))
	return it.chunk, nil
}

// run executes the stages in order, stopping at the first failure.
// A panicking stage fails with that stage's error kind.
func (p *Pipeline) run(ctx context.Context, it *item) (err error) {
	var current processor
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("ingestion stage panicked", "room_id", it.roomID, "panic", r)
			err = fmt.Errorf("%w: stage panicked: %v", current.kind(), r)
		}
	}()
	for _, stage := range p.stages {
		current = stage
		if err := stage.process(ctx, it); err != nil {
			return err
		}
	}
	return nil
}

// BatchItem is one audio payload of an IngestBatch call.
type BatchItem struct {
	// Name identifies the item in results, usually a file name.
	Name     string
	Audio    []byte
	MimeType string
}

// BatchResult is the outcome of one BatchItem.
type BatchResult struct {
	Name    string
	ChunkID core.ID
	Err     error
}

// IngestBatch ingests every item into roomID through the shared pool and
// returns one result per item, in input order. A failing item does not
// stop the others.
func (p *Pipeline) IngestBatch(ctx context.Context, roomID string, items []BatchItem) []BatchResult {
	results := make([]BatchResult, len(items))
	var wg sync.WaitGroup
	for i, bi := range items {
		results[i].Name = bi.Name
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i].ChunkID, results[i].Err = p.Ingest(ctx, roomID, bi.Audio, bi.MimeType)
		}()
	}
	wg.Wait()
	return results
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
