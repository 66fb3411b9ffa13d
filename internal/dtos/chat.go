// File: internal/dtos/chat.go
package dtos

import (
	"time"

	"github.com/iyunix/go-gptchat/internal/domain"
)

type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryMessage is a prior turn supplied by the client; only role and content are used.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type SendMessageRequest struct {
	Message     string           `json:"message"`
	ChatID      string           `json:"chatId,omitempty"`
	CustomGPTID string           `json:"customGPTId,omitempty"`
	Messages    []HistoryMessage `json:"messages,omitempty"`
}

type SendMessageResponse struct {
	ChatID  string  `json:"chatId"`
	Title   string  `json:"title"`
	Message Message `json:"message"`
}

type ChatsResponse struct {
	Chats []Chat `json:"chats"`
}

type ChatResponse struct {
	Chat Chat `json:"chat"`
}

type RenameChatRequest struct {
	Title string `json:"title"`
}

type MessagesResponse struct {
	Messages []Message `json:"messages"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func ToChat(c *domain.Chat) Chat {
	return Chat{ID: c.ID, Title: c.Title, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

func ToChats(chats []domain.Chat) []Chat {
	out := make([]Chat, 0, len(chats))
	for i := range chats {
		out = append(out, ToChat(&chats[i]))
	}
	return out
}

func ToMessage(m *domain.Message) Message {
	return Message{Role: string(m.Role), Content: m.Content, CreatedAt: m.CreatedAt}
}

func ToMessages(messages []domain.Message) []Message {
	out := make([]Message, 0, len(messages))
	for i := range messages {
		out = append(out, ToMessage(&messages[i]))
	}
	return out
}
