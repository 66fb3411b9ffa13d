// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"time"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Provider string

	// OpenAI-compatible backend (Groq by default)
	APIKey  string
	BaseURL string
	Model   string

	GeminiAPIKey string
	GeminiModel  string

	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.APIKey == "" {
			return NewConfigError("LLM_API_KEY is required")
		}
		if c.Model == "" {
			return NewConfigError("LLM_MODEL is required")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return NewConfigError("GEMINI_API_KEY is required")
		}
	default:
		return NewConfigError(fmt.Sprintf("unknown AI provider %q", c.Provider))
	}
	if c.Timeout <= 0 {
		return NewConfigError("timeout must be positive")
	}
	if c.MaxTokens < 1 {
		return NewConfigError("max tokens must be at least 1")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderOpenAI,
		BaseURL:     "https://api.groq.com/openai/v1",
		Model:       "llama-3.3-70b-versatile",
		GeminiModel: "gemini-1.5-flash-latest",
		Timeout:     2 * time.Minute,
		Temperature: 0.7,
		MaxTokens:   2048,
	}
}
