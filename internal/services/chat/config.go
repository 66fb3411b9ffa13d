// File: internal/services/chat/config.go
package chat

import (
	"fmt"
	"time"
)

type Config struct {
	// DefaultSystemPrompt is used when neither a usable persona nor a saved user prompt applies.
	DefaultSystemPrompt string
	// MaxHistoryMessages caps the caller-supplied prior turns sent upstream.
	MaxHistoryMessages int
	// CompletionTimeout bounds one completion call, streaming included.
	CompletionTimeout time.Duration
	// SaveTimeout bounds persistence after a stream, which outlives the request context.
	SaveTimeout time.Duration
}

func (c *Config) Validate() error {
	if c.DefaultSystemPrompt == "" {
		return fmt.Errorf("default_system_prompt is required")
	}
	if c.MaxHistoryMessages < 0 {
		return fmt.Errorf("max_history_messages cannot be negative")
	}
	if c.CompletionTimeout <= 0 {
		return fmt.Errorf("completion_timeout must be positive")
	}
	if c.SaveTimeout <= 0 {
		return fmt.Errorf("save_timeout must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		DefaultSystemPrompt: "You are a helpful assistant.",
		MaxHistoryMessages:  50,
		CompletionTimeout:   2 * time.Minute,
		SaveTimeout:         5 * time.Second,
	}
}
