// File: internal/repository/message/interface.go
package message

import (
	"context"

	"github.com/iyunix/go-gptchat/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	// FindByChatID returns the chat's messages in chronological order.
	FindByChatID(ctx context.Context, chatID string) ([]domain.Message, error)
	CountByChatID(ctx context.Context, chatID string) (int64, error)
	DeleteByChatID(ctx context.Context, chatID string) error
}

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}
