package config

import (
	"fmt"
	"os"
	"path/filepath"

	"delm/internal/domain"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for delm. It is loaded once at startup and
// not re-read afterwards.
type Config struct {
	Categories []string        `yaml:"categories"`
	Store      StoreConfig     `yaml:"store"`
	Embedding  EmbeddingConfig `yaml:"embedding"`
	Generator  GeneratorConfig `yaml:"generator"`
	Retrieve   RetrieveConfig  `yaml:"retrieve"`
	Assemble   AssembleConfig  `yaml:"assemble"`
	Logging    LoggingConfig   `yaml:"logging"`
}

// StoreConfig selects and configures the pattern store backend.
type StoreConfig struct {
	Backend string       `yaml:"backend"` // "bolt", "memory", "qdrant"
	Path    string       `yaml:"path"`    // bolt db path override
	Qdrant  QdrantConfig `yaml:"qdrant"`
}

// QdrantConfig holds Qdrant connection settings.
type QdrantConfig struct {
	Addr       string `yaml:"addr"`
	Collection string `yaml:"collection"`
}

// EmbeddingConfig holds embedding service configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "openai", "jina", "deepseek", "ollama", "mock"
	Model     string `yaml:"model"`       // e.g., "text-embedding-3-small"
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for API key
	BaseURL   string `yaml:"base_url"`    // override for OpenAI-compatible endpoints
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// GeneratorConfig holds generative-model configuration.
type GeneratorConfig struct {
	Provider    string  `yaml:"provider"` // "openai", "anthropic", "ollama", "mock"
	Model       string  `yaml:"model"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	BaseURL     string  `yaml:"base_url"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK         int     `yaml:"top_k"`
	MinScore     float64 `yaml:"min_score"` // Filter results below this score (0 = disabled)
	CacheEnabled bool    `yaml:"cache_enabled"`
}

// AssembleConfig holds context assembly configuration.
type AssembleConfig struct {
	TokenBudget int `yaml:"token_budget"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Categories: []string{"components", "styles", "layouts"},
		Store: StoreConfig{
			Backend: "bolt",
			Qdrant: QdrantConfig{
				Addr:       "localhost:6334",
				Collection: "delm_patterns",
			},
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1536,
			BatchSize: 100,
		},
		Generator: GeneratorConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
			MaxTokens:   2048,
			Temperature: 0.7,
		},
		Retrieve: RetrieveConfig{
			TopK:         5,
			MinScore:     0,
			CacheEnabled: false,
		},
		Assemble: AssembleConfig{
			TokenBudget: 4000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for delm.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "delm.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".delm", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks settings that would otherwise fail deep inside the pipeline.
func (c *Config) Validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("config: categories must not be empty")
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("config: embedding dimension must be positive")
	}
	if c.Retrieve.TopK <= 0 {
		return fmt.Errorf("config: retrieve top_k must be positive")
	}
	if c.Assemble.TokenBudget <= 0 {
		return fmt.Errorf("config: assemble token_budget must be positive")
	}
	switch c.Store.Backend {
	case "bolt", "memory", "qdrant":
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	return nil
}

// CategorySet returns the immutable closed category set.
func (c *Config) CategorySet() *domain.CategorySet {
	return domain.NewCategorySet(c.Categories)
}

// PatternDBPath returns the path to the pattern database.
func PatternDBPath(dir string) string {
	return filepath.Join(dir, ".delm", "patterns.db")
}

// EnsureDELMDir ensures the .delm directory exists.
func EnsureDELMDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".delm"), 0755)
}
