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


package ai

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Supported providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Default models per provider.
const (
	DefaultGeminiChatModel      = "gemini-2.5-flash"
	DefaultGeminiEmbeddingModel = "text-embedding-004"

	DefaultOpenAIChatModel          = "gpt-4o-mini"
	DefaultOpenAIEmbeddingModel     = "text-embedding-3-small"
	DefaultOpenAITranscriptionModel = "whisper-1"

	DefaultLanguage = "pt-BR"
	DefaultTimeout  = 60 * time.Second
)

// Config holds configuration for AI service providers.
type Config struct {
	// Provider selects the backend: "gemini" or "openai".
	Provider string

	// APIKey authenticates against the provider. Local OpenAI-compatible
	// servers accept any value.
	APIKey string

	// EmbeddingHost is the base URL for an OpenAI-compatible API.
	// Example: "http://localhost:11434/v1". Empty means api.openai.com.
	// Ignored by the gemini provider.
	EmbeddingHost string

	// EmbeddingModel is the model identifier used for text embeddings.
	EmbeddingModel string

	// TranscriptionModel turns audio into text.
	// Gemini uses a multimodal chat model; OpenAI uses Whisper.
	TranscriptionModel string

	// ChatModel synthesizes answers.
	ChatModel string

	// Language is the BCP 47 tag transcripts and answers are written in.
	Language string

	// Timeout bounds each request to the provider.
	Timeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithProvider selects the provider backend.
func WithProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

// WithAPIKey sets the provider API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithEmbeddingHost sets the OpenAI-compatible host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithTranscriptionModel sets the transcription model identifier.
func WithTranscriptionModel(model string) ConfigOption {
	return func(c *Config) {
		c.TranscriptionModel = model
	}
}

// WithChatModel sets the answer synthesis model identifier.
func WithChatModel(model string) ConfigOption {
	return func(c *Config) {
		c.ChatModel = model
	}
}

// WithLanguage sets the transcript and answer language.
func WithLanguage(lang string) ConfigOption {
	return func(c *Config) {
		c.Language = lang
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = d
	}
}

// DefaultConfig returns a Gemini configuration without an API key.
// Models are filled in by Normalize.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Language: DefaultLanguage,
		Timeout:  DefaultTimeout,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithProvider(ProviderOpenAI),
//	    WithEmbeddingHost("http://localhost:11434/v1"),
//	    WithEmbeddingModel("nomic-embed-text"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.Normalize()
	return cfg
}

// Normalize fills unset models with the provider defaults and puts the
// host in canonical form.
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	switch c.Provider {
	case ProviderGemini:
		if c.EmbeddingModel == "" {
			c.EmbeddingModel = DefaultGeminiEmbeddingModel
		}
		if c.ChatModel == "" {
			c.ChatModel = DefaultGeminiChatModel
		}
		if c.TranscriptionModel == "" {
			c.TranscriptionModel = c.ChatModel
		}
	case ProviderOpenAI:
		if c.EmbeddingModel == "" {
			c.EmbeddingModel = DefaultOpenAIEmbeddingModel
		}
		if c.ChatModel == "" {
			c.ChatModel = DefaultOpenAIChatModel
		}
		if c.TranscriptionModel == "" {
			c.TranscriptionModel = DefaultOpenAITranscriptionModel
		}
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}

	// OpenAI-compatible APIs (Ollama, LocalAI, vLLM) live under /v1
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/") + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Provider {
	case ProviderGemini:
		if c.APIKey == "" {
			return errors.New("ai config: APIKey is required for the gemini provider")
		}
	case ProviderOpenAI:
		// Local servers run without a key.
		if c.APIKey == "" && c.EmbeddingHost == "" {
			return errors.New("ai config: APIKey is required when EmbeddingHost is unset")
		}
	default:
		return fmt.Errorf("ai config: unknown provider %q", c.Provider)
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.ChatModel == "" {
		return errors.New("ai config: ChatModel is required")
	}
	if c.TranscriptionModel == "" {
		return errors.New("ai config: TranscriptionModel is required")
	}
	if c.Timeout <= 0 {
		return errors.New("ai config: Timeout must be positive")
	}
	return nil
}
