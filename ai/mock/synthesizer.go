package mock

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// MockSynthesizer is a test double for ai.AnswerSynthesizer.
// It records the passages of the last call.
type MockSynthesizer struct {
	// SynthesizeFunc is called by Synthesize if set.
	SynthesizeFunc func(ctx context.Context, question string, passages []string) (string, error)

	callCount atomic.Int64

	mu           sync.Mutex
	lastPassages []string
}

// NewMockSynthesizer creates a mock synthesizer with default behavior.
func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{}
}

// Synthesize returns the configured result, or a canned answer.
func (m *MockSynthesizer) Synthesize(ctx context.Context, question string, passages []string) (string, error) {
	m.callCount.Add(1)
	m.mu.Lock()
	m.lastPassages = append([]string(nil), passages...)
	m.mu.Unlock()

	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, question, passages)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("answer to %q from %d passages", question, len(passages)), nil
}

// LastPassages returns the passages of the most recent call.
func (m *MockSynthesizer) LastPassages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPassages
}

// CallCount returns the number of times Synthesize was called.
func (m *MockSynthesizer) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count, recorded passages and injected behavior.
func (m *MockSynthesizer) Reset() {
	m.callCount.Store(0)
	m.mu.Lock()
	m.lastPassages = nil
	m.mu.Unlock()
	m.SynthesizeFunc = nil
}
