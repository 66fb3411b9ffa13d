// File: internal/domain/message.go
package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleSystem only appears in completion requests, never in stored rows.
	RoleSystem Role = "system"
)

// IsValidRole reports whether role may be persisted.
func IsValidRole(role Role) bool {
	return role == RoleUser || role == RoleAssistant
}

// Message is immutable once created.
type Message struct {
	ID        string    `gorm:"primaryKey;size:64"`
	ChatID    string    `gorm:"index;not null;size:64"`
	Role      Role      `gorm:"size:16;not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`
}

func NewUserMessage(chatID, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, NewValidationError("Message content cannot be empty")
	}
	return &Message{
		ID:        NewID(),
		ChatID:    chatID,
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func NewAssistantMessage(chatID, content string) *Message {
	return &Message{
		ID:        NewID(),
		ChatID:    chatID,
		Role:      RoleAssistant,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

func (m *Message) IsUserMessage() bool { return m.Role == RoleUser }

func (m *Message) IsAssistantMessage() bool { return m.Role == RoleAssistant }
