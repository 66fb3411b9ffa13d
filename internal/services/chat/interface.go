// File: internal/services/chat/interface.go
package chat

import (
	"context"

	"github.com/iyunix/go-gptchat/internal/domain"
	"github.com/iyunix/go-gptchat/internal/services/ai"
)

// SendMessageRequest is one user turn. An empty ChatID starts a new chat.
type SendMessageRequest struct {
	Message          string
	ChatID           string
	Identity         domain.Identity
	CustomGPTID      string
	PreviousMessages []ai.ChatMessage
}

type SendResult struct {
	Chat             *domain.Chat
	AssistantMessage *domain.Message
	Created          bool
}

// ChatProvider handles basic chat operations
type ChatProvider interface {
	GetUserChats(ctx context.Context, identity domain.Identity) ([]domain.Chat, error)
	GetChat(ctx context.Context, identity domain.Identity, chatID string) (*domain.Chat, error)
	GetChatMessages(ctx context.Context, identity domain.Identity, chatID string) ([]domain.Message, error)
	DeleteChat(ctx context.Context, identity domain.Identity, chatID string) error
	RenameChat(ctx context.Context, identity domain.Identity, chatID, title string) (*domain.Chat, error)
}

// MessageSender runs the send-message flow, synchronously or as a stream.
type MessageSender interface {
	SendMessage(ctx context.Context, req SendMessageRequest) (*SendResult, error)
	// StreamMessage calls onStart once the chat is resolved and before any
	// chunk, then onDelta for every chunk.
	StreamMessage(ctx context.Context, req SendMessageRequest, onStart func(*domain.Chat) error, onDelta func(string) error) (*SendResult, error)
}

// Service combines all chat capabilities
type Service interface {
	ChatProvider
	MessageSender
}
