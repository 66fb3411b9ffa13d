// File: internal/repository/chat/interface.go
package chat

import (
	"context"

	"github.com/iyunix/go-gptchat/internal/domain"
)

// ChatRepository handles chat data operations.
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error)
	FindByID(ctx context.Context, id string) (*domain.Chat, error)
	// FindByUserID returns the user's chats, most recently updated first.
	FindByUserID(ctx context.Context, userID string) ([]domain.Chat, error)
	// FindByGuestIP returns chats created by guests from ip, most recently updated first.
	FindByGuestIP(ctx context.Context, ip string) ([]domain.Chat, error)
	Update(ctx context.Context, chat *domain.Chat) error
	TouchUpdatedAt(ctx context.Context, chatID string) error
	Delete(ctx context.Context, chatID string) error
}

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}
