// File: internal/domain/chat.go
package domain

import (
	"strings"
	"time"
)

const (
	TitleMaxLength = 50
	titleEllipsis  = "..."
)

// Chat represents a single conversation thread, owned by a user or by a guest IP.
type Chat struct {
	ID        string  `gorm:"primaryKey;size:64"`
	UserID    *string `gorm:"index;size:64"`
	GuestIP   *string `gorm:"index;size:64"`
	Title     string  `gorm:"size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`
}

// NewChat creates a chat titled after the first message and owned by the given identity.
func NewChat(owner Identity, firstMessage string) *Chat {
	now := time.Now().UTC()
	c := &Chat{
		ID:        NewID(),
		Title:     GenerateTitle(firstMessage),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if owner.IsAuthenticated() {
		userID := owner.UserID
		c.UserID = &userID
	} else {
		ip := owner.GuestIP
		c.GuestIP = &ip
	}
	return c
}

// GenerateTitle keeps the first TitleMaxLength characters of the trimmed message.
func GenerateTitle(message string) string {
	trimmed := []rune(strings.TrimSpace(message))
	if len(trimmed) <= TitleMaxLength {
		return string(trimmed)
	}
	return string(trimmed[:TitleMaxLength]) + titleEllipsis
}

// IsOwnedBy is true only for chats whose user id equals userID; guest chats have no owner.
func (c *Chat) IsOwnedBy(userID string) bool {
	return c.UserID != nil && userID != "" && *c.UserID == userID
}

func (c *Chat) IsGuestChat() bool {
	return c.UserID == nil && c.GuestIP != nil && *c.GuestIP != ""
}

// CanBeAccessedBy applies the ownership rule: user id match when authenticated, guest IP match otherwise.
func (c *Chat) CanBeAccessedBy(id Identity) bool {
	if id.IsAuthenticated() {
		return c.IsOwnedBy(id.UserID)
	}
	return c.GuestIP != nil && *c.GuestIP == id.GuestIP
}

func (c *Chat) UpdateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return NewValidationError("Title cannot be empty")
	}
	c.Title = title
	c.Touch()
	return nil
}

func (c *Chat) Touch() {
	c.UpdatedAt = time.Now().UTC()
}
