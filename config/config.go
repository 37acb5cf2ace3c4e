package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/auditorium/ai"
	"github.com/poiesic/auditorium/storage"
	"github.com/poiesic/auditorium/storage/postgres"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageBadger   = "badger"
)

// Environment variables read by ApplyEnv.
const (
	EnvPort        = "PORT"
	EnvDatabaseURL = "DATABASE_URL"
	EnvGeminiKey   = "GEMINI_API_KEY"
	EnvOpenAIKey   = "OPENAI_API_KEY"
	EnvStorage     = "AUDITORIUM_STORAGE"
	EnvDataDir     = "AUDITORIUM_DATA_DIR"
)

const (
	DefaultPort          = 3333
	DefaultCORSOrigin    = "http://localhost:5173"
	DefaultMaxUploadMB   = 25
	DefaultDataDir       = "./data"
	DefaultPoolSize      = 4
	DefaultTimeoutSecs   = 60
	DefaultMaxConns      = 10
	DefaultConfigName    = "auditorium.yaml"
	postgresScheme       = "postgresql://"
	postgresSchemeLegacy = "postgres://"
)

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
	MaxUploadMB int      `yaml:"max_upload_mb"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig selects and configures the store.
type StorageConfig struct {
	Type        string `yaml:"type"`
	DatabaseURL string `yaml:"database_url"`
	DataDir     string `yaml:"data_dir"`
	Dimensions  int    `yaml:"dimensions"`
	MaxConns    int32  `yaml:"max_conns"`
	Migrate     bool   `yaml:"migrate"`
}

// AIConfig mirrors ai.Config in file form.
type AIConfig struct {
	Provider           string `yaml:"provider"`
	APIKey             string `yaml:"api_key"`
	Host               string `yaml:"host"`
	EmbeddingModel     string `yaml:"embedding_model"`
	TranscriptionModel string `yaml:"transcription_model"`
	ChatModel          string `yaml:"chat_model"`
	Language           string `yaml:"language"`
	TimeoutSecs        int    `yaml:"timeout_secs"`
}

// PipelineConfig holds pool sizing, stage timeouts and the grounding policy.
// Zero timeouts fall back to the pipeline defaults.
type PipelineConfig struct {
	PoolSize                 int `yaml:"pool_size"`
	TranscriptionTimeoutSecs int `yaml:"transcription_timeout_secs"`
	EmbeddingTimeoutSecs     int `yaml:"embedding_timeout_secs"`
	SynthesisTimeoutSecs     int `yaml:"synthesis_timeout_secs"`
	PersistenceTimeoutSecs   int `yaml:"persistence_timeout_secs"`
	Limit                    int `yaml:"limit"`

	// MinSimilarity is nil when unset, so an explicit 0 survives defaults.
	MinSimilarity *float64 `yaml:"min_similarity,omitempty"`
}

// SimilarityQuery returns the grounding policy.
func (p PipelineConfig) SimilarityQuery() storage.SimilarityQuery {
	minSimilarity := storage.DefaultMinSimilarity
	if p.MinSimilarity != nil {
		minSimilarity = *p.MinSimilarity
	}
	return storage.SimilarityQuery{MinSimilarity: minSimilarity, Limit: p.Limit}
}

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	AI       AIConfig       `yaml:"ai"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a config from path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Save writes the config to path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadEnv loads variables from .env files into the process environment.
// Variables already set win. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides file values with the environment.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup(EnvDatabaseURL); ok && v != "" {
		c.Storage.DatabaseURL = v
		if c.Storage.Type == "" {
			c.Storage.Type = StoragePostgres
		}
	}
	if v, ok := lookup(EnvStorage); ok && v != "" {
		c.Storage.Type = strings.ToLower(v)
	}
	if v, ok := lookup(EnvDataDir); ok && v != "" {
		c.Storage.DataDir = v
	}

	// The key follows the selected provider.
	switch c.AI.Provider {
	case ai.ProviderGemini:
		if v, ok := lookup(EnvGeminiKey); ok && v != "" {
			c.AI.APIKey = v
		}
	case ai.ProviderOpenAI:
		if v, ok := lookup(EnvOpenAIKey); ok && v != "" {
			c.AI.APIKey = v
		}
	}
	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	switch c.Storage.Type {
	case StoragePostgres:
		url := c.Storage.DatabaseURL
		if !strings.HasPrefix(url, postgresScheme) && !strings.HasPrefix(url, postgresSchemeLegacy) {
			return fmt.Errorf("%s must start with %s", EnvDatabaseURL, postgresScheme)
		}
		if c.Storage.Dimensions < 1 {
			return fmt.Errorf("invalid embedding dimensions %d", c.Storage.Dimensions)
		}
	case StorageBadger:
		if c.Storage.DataDir == "" {
			return errors.New("data_dir is required for badger storage")
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	if err := c.Pipeline.SimilarityQuery().Validate(); err != nil {
		return err
	}
	if c.Pipeline.PoolSize < 1 {
		return fmt.Errorf("invalid pool size %d", c.Pipeline.PoolSize)
	}
	return c.AIConfig().Validate()
}

// AIConfig converts the file form into an ai.Config.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithProvider(c.AI.Provider),
		ai.WithAPIKey(c.AI.APIKey),
		ai.WithEmbeddingHost(c.AI.Host),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithTranscriptionModel(c.AI.TranscriptionModel),
		ai.WithChatModel(c.AI.ChatModel),
		ai.WithLanguage(c.AI.Language),
		ai.WithTimeout(Seconds(c.AI.TimeoutSecs)),
	)
}

// Seconds converts a whole-second setting into a duration.
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{DefaultCORSOrigin}
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = DefaultMaxUploadMB
	}
	if cfg.Storage.Type == "" && cfg.Storage.DatabaseURL != "" {
		cfg.Storage.Type = StoragePostgres
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = StorageBadger
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = DefaultDataDir
	}
	if cfg.Storage.Dimensions == 0 {
		cfg.Storage.Dimensions = postgres.DefaultDimensions
	}
	if cfg.Storage.MaxConns == 0 {
		cfg.Storage.MaxConns = DefaultMaxConns
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = ai.ProviderGemini
	}
	if cfg.AI.Language == "" {
		cfg.AI.Language = ai.DefaultLanguage
	}
	if cfg.AI.TimeoutSecs == 0 {
		cfg.AI.TimeoutSecs = DefaultTimeoutSecs
	}
	if cfg.Pipeline.PoolSize == 0 {
		cfg.Pipeline.PoolSize = DefaultPoolSize
	}
	if cfg.Pipeline.MinSimilarity == nil {
		minSimilarity := storage.DefaultMinSimilarity
		cfg.Pipeline.MinSimilarity = &minSimilarity
	}
	if cfg.Pipeline.Limit == 0 {
		cfg.Pipeline.Limit = storage.DefaultLimit
	}
}
