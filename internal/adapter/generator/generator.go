package generator

import (
	"fmt"
	"os"

	"delm/config"
	"delm/internal/port"
)

// New builds a generator from configuration.
func New(cfg config.GeneratorConfig) (port.Generator, error) {
	switch cfg.Provider {
	case "mock":
		return NewMockGenerator(""), nil
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434/v1"
		}
		return newOpenAIGenerator("ollama", cfg.Model, baseURL, cfg.MaxTokens, cfg.Temperature), nil
	case "openai", "deepseek":
		apiKey := os.Getenv(cfg.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("API key not found in environment variable: %s", cfg.APIKeyEnv)
		}
		baseURL := cfg.BaseURL
		if baseURL == "" && cfg.Provider == "deepseek" {
			baseURL = "https://api.deepseek.com/v1"
		}
		return newOpenAIGenerator(apiKey, cfg.Model, baseURL, cfg.MaxTokens, cfg.Temperature), nil
	case "anthropic":
		apiKey := os.Getenv(cfg.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("API key not found in environment variable: %s", cfg.APIKeyEnv)
		}
		return newAnthropicGenerator(apiKey, cfg.Model, cfg.MaxTokens, cfg.Temperature), nil
	}
	return nil, fmt.Errorf("unknown generator provider: %q", cfg.Provider)
}
