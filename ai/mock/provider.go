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


package mock

import "github.com/poiesic/auditorium/ai"

// MockProvider is a test double for ai.AIProvider.
type MockProvider struct {
	transcriber *MockTranscriber
	embedder    *MockEmbedder
	synthesizer *MockSynthesizer
	closed      bool
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use the GetMockX methods to access concrete types for test assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		transcriber: NewMockTranscriber(),
		embedder:    NewMockEmbedder(),
		synthesizer: NewMockSynthesizer(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
func NewMockProviderWithServices(transcriber *MockTranscriber, embedder *MockEmbedder, synthesizer *MockSynthesizer) ai.AIProvider {
	return &MockProvider{
		transcriber: transcriber,
		embedder:    embedder,
		synthesizer: synthesizer,
	}
}

func (p *MockProvider) Transcriber() ai.Transcriber {
	return p.transcriber
}

func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *MockProvider) Synthesizer() ai.AnswerSynthesizer {
	return p.synthesizer
}

// Close marks the provider closed.
func (p *MockProvider) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *MockProvider) Closed() bool {
	return p.closed
}

// GetMockTranscriber returns the underlying mock transcriber.
func (p *MockProvider) GetMockTranscriber() *MockTranscriber {
	return p.transcriber
}

// GetMockEmbedder returns the underlying mock embedder.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockSynthesizer returns the underlying mock synthesizer.
func (p *MockProvider) GetMockSynthesizer() *MockSynthesizer {
	return p.synthesizer
}
