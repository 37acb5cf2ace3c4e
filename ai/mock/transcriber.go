package mock

import (
	"context"
	"strings"
	"sync/atomic"
)

// MockTranscriber is a test double for ai.Transcriber.
type MockTranscriber struct {
	// TranscribeFunc is called by Transcribe if set.
	// If nil, the audio bytes are returned as text.
	TranscribeFunc func(ctx context.Context, audio []byte, mimeType string) (string, error)

	callCount atomic.Int64
}

// NewMockTranscriber creates a mock transcriber with default behavior.
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{}
}

// Transcribe returns the configured result, or the audio as text.
func (m *MockTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	m.callCount.Add(1)

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audio, mimeType)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.TrimSpace(string(audio)), nil
}

// CallCount returns the number of times Transcribe was called.
func (m *MockTranscriber) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and injected behavior.
func (m *MockTranscriber) Reset() {
	m.callCount.Store(0)
	m.TranscribeFunc = nil
}
