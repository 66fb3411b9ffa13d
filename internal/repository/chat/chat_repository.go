// File: internal/repository/chat/chat_repository.go
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iyunix/go-gptchat/internal/domain"
	"gorm.io/gorm"
)

var ErrChatNotFound = &domain.NotFoundError{Entity: "Chat"}

type gormChatRepository struct {
	db     *gorm.DB
	logger Logger
}

func NewChatRepository(db *gorm.DB, logger Logger) ChatRepository {
	return &gormChatRepository{db: db, logger: logger}
}

func (r *gormChatRepository) Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error) {
	if err := validateChatInput(chat); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		r.logger.Error("database error during chat creation", "chat_id", chat.ID, "error", err)
		return nil, fmt.Errorf("database error creating chat: %w", err)
	}

	r.logger.Info("chat created", "chat_id", chat.ID, "guest", chat.IsGuestChat())
	return chat, nil
}

func (r *gormChatRepository) FindByID(ctx context.Context, id string) (*domain.Chat, error) {
	if id == "" {
		return nil, ErrChatNotFound
	}

	var chat domain.Chat
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&chat).Error
	return r.handleFindError(err, &chat, "FindByID")
}

func (r *gormChatRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Chat, error) {
	if userID == "" {
		return nil, errors.New("invalid user ID")
	}

	var chats []domain.Chat
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC, id DESC").
		Find(&chats).Error
	if err != nil {
		r.logger.Error("database error finding chats for user", "user_id", userID, "error", err)
		return nil, fmt.Errorf("database error fetching chats: %w", err)
	}
	return chats, nil
}

func (r *gormChatRepository) FindByGuestIP(ctx context.Context, ip string) ([]domain.Chat, error) {
	var chats []domain.Chat
	err := r.db.WithContext(ctx).
		Where("guest_ip = ? AND user_id IS NULL", ip).
		Order("updated_at DESC, id DESC").
		Find(&chats).Error
	if err != nil {
		r.logger.Error("database error finding guest chats", "error", err)
		return nil, fmt.Errorf("database error fetching chats: %w", err)
	}
	return chats, nil
}

func (r *gormChatRepository) Update(ctx context.Context, chat *domain.Chat) error {
	if err := validateChatInput(chat); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("id = ?", chat.ID).
		Updates(map[string]interface{}{
			"title":      chat.Title,
			"updated_at": chat.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Error("database error updating chat", "chat_id", chat.ID, "error", result.Error)
		return fmt.Errorf("database error updating chat: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrChatNotFound
	}
	return nil
}

func (r *gormChatRepository) TouchUpdatedAt(ctx context.Context, chatID string) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("id = ?", chatID).
		Update("updated_at", time.Now().UTC())
	if result.Error != nil {
		r.logger.Error("database error updating chat timestamp", "chat_id", chatID, "error", result.Error)
		return fmt.Errorf("database error updating chat timestamp: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrChatNotFound
	}
	return nil
}

func (r *gormChatRepository) Delete(ctx context.Context, chatID string) error {
	result := r.db.WithContext(ctx).Where("id = ?", chatID).Delete(&domain.Chat{})
	if result.Error != nil {
		r.logger.Error("database error deleting chat", "chat_id", chatID, "error", result.Error)
		return fmt.Errorf("database error deleting chat: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrChatNotFound
	}
	r.logger.Info("chat deleted", "chat_id", chatID)
	return nil
}

// validateChatInput enforces exactly one owner per chat.
func validateChatInput(chat *domain.Chat) error {
	if chat == nil {
		return errors.New("chat cannot be nil")
	}
	if chat.ID == "" {
		return errors.New("chat ID is required")
	}
	hasUser := chat.UserID != nil && *chat.UserID != ""
	hasGuest := chat.GuestIP != nil && *chat.GuestIP != ""
	if hasUser == hasGuest {
		return errors.New("chat must have exactly one of user ID or guest IP")
	}
	if len(chat.Title) > 255 {
		return errors.New("title must be 255 characters or less")
	}
	return nil
}

func (r *gormChatRepository) handleFindError(err error, chat *domain.Chat, operation string) (*domain.Chat, error) {
	if err == nil {
		return chat, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatNotFound
	}
	r.logger.Error("chat query failed", "operation", operation, "error", err)
	return nil, fmt.Errorf("database query failed: %w", err)
}
