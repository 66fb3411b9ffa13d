// File: internal/services/chat/types.go
package chat

import (
	"context"

	"github.com/iyunix/go-gptchat/internal/domain"
	"github.com/iyunix/go-gptchat/internal/services/ai"
)

// Logger defines the logging interface used across chat services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// AIProvider is the part of the completion backend the chat service uses.
type AIProvider interface {
	GetCompletion(ctx context.Context, messages []ai.ChatMessage) (string, error)
	StreamCompletion(ctx context.Context, messages []ai.ChatMessage, onDelta func(string) error) error
}

// UserFinder loads the caller's account for their saved system prompt.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// PersonaFinder looks up custom GPT personas by id.
type PersonaFinder interface {
	FindByID(ctx context.Context, id string) (*domain.CustomGPT, error)
}
