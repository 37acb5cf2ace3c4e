package ai

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, DefaultLanguage, cfg.Language)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Empty(t, cfg.APIKey)
}

func TestNewConfig(t *testing.T) {
	t.Run("gemini defaults", func(t *testing.T) {
		cfg := NewConfig()

		assert.Equal(t, DefaultGeminiEmbeddingModel, cfg.EmbeddingModel)
		assert.Equal(t, DefaultGeminiChatModel, cfg.ChatModel)
		assert.Equal(t, DefaultGeminiChatModel, cfg.TranscriptionModel)
	})

	t.Run("openai defaults", func(t *testing.T) {
		cfg := NewConfig(WithProvider("OpenAI"))

		assert.Equal(t, ProviderOpenAI, cfg.Provider)
		assert.Equal(t, DefaultOpenAIEmbeddingModel, cfg.EmbeddingModel)
		assert.Equal(t, DefaultOpenAIChatModel, cfg.ChatModel)
		assert.Equal(t, DefaultOpenAITranscriptionModel, cfg.TranscriptionModel)
	})

	t.Run("with custom models", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingModel("nomic-embed-text"),
			WithChatModel("gemini-2.5-pro"),
			WithTranscriptionModel("gemini-2.5-flash-lite"),
		)

		assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
		assert.Equal(t, "gemini-2.5-pro", cfg.ChatModel)
		assert.Equal(t, "gemini-2.5-flash-lite", cfg.TranscriptionModel)
	})

	t.Run("with language and timeout", func(t *testing.T) {
		cfg := NewConfig(WithLanguage("en-US"), WithTimeout(5*time.Second))

		assert.Equal(t, "en-US", cfg.Language)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		expected string
	}{
		{"adds v1", "http://localhost:11434", "http://localhost:11434/v1"},
		{"trims slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"keeps v1", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Provider: ProviderOpenAI, EmbeddingHost: tt.host}
			cfg.Normalize()
			assert.Equal(t, tt.expected, cfg.EmbeddingHost)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("gemini requires key", func(t *testing.T) {
		cfg := NewConfig()
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "APIKey")

		cfg.APIKey = "secret"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("openai local host without key", func(t *testing.T) {
		cfg := NewConfig(WithProvider(ProviderOpenAI), WithEmbeddingHost("http://localhost:11434"))
		assert.NoError(t, cfg.Validate())
	})

	t.Run("openai cloud requires key", func(t *testing.T) {
		cfg := NewConfig(WithProvider(ProviderOpenAI))
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := NewConfig(WithProvider("watson"), WithAPIKey("k"))
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown provider")
	})

	t.Run("non-positive timeout", func(t *testing.T) {
		cfg := NewConfig(WithAPIKey("k"), WithTimeout(0))
		assert.Error(t, cfg.Validate())
	})
}

func TestPrompts(t *testing.T) {
	t.Run("join passages", func(t *testing.T) {
		assert.Equal(t, "a\n\nb\n\nc", JoinPassages([]string{"a", "b", "c"}))
		assert.Equal(t, "", JoinPassages(nil))
	})

	t.Run("answer prompt embeds context and question", func(t *testing.T) {
		prompt := BuildAnswerPrompt("O que é fotossíntese?", []string{"primeiro", "segundo"}, DefaultLanguage)

		assert.Contains(t, prompt, "CONTEXTO:\nprimeiro\n\nsegundo")
		assert.Contains(t, prompt, "PERGUNTA:\nO que é fotossíntese?")
		assert.Contains(t, prompt, "INSTRUÇÕES:")
		assert.Contains(t, prompt, "conteúdo da aula")
		assert.Contains(t, prompt, "português do Brasil")
	})

	t.Run("transcription prompt", func(t *testing.T) {
		prompt := BuildTranscriptionPrompt("pt-BR")
		assert.True(t, strings.HasPrefix(prompt, "Transcreva o áudio para português do Brasil"))
		assert.Contains(t, BuildTranscriptionPrompt("de"), "de")
	})

	t.Run("language code", func(t *testing.T) {
		assert.Equal(t, "pt", LanguageCode("pt-BR"))
		assert.Equal(t, "en", LanguageCode("EN_us"))
		assert.Equal(t, "pt", LanguageCode(""))
	})
}
