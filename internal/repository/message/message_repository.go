// File: internal/repository/message/message_repository.go
package message

import (
	"context"
	"errors"
	"fmt"

	"github.com/iyunix/go-gptchat/internal/domain"
	"gorm.io/gorm"
)

type gormMessageRepository struct {
	db     *gorm.DB
	logger Logger
}

func NewMessageRepository(db *gorm.DB, logger Logger) MessageRepository {
	return &gormMessageRepository{db: db, logger: logger}
}

func (r *gormMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if err := validateMessageInput(message); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		r.logger.Error("database error during message creation", "chat_id", message.ChatID, "error", err)
		return nil, fmt.Errorf("database error creating message: %w", err)
	}
	return message, nil
}

func (r *gormMessageRepository) FindByChatID(ctx context.Context, chatID string) ([]domain.Message, error) {
	if chatID == "" {
		return nil, errors.New("invalid chat ID")
	}

	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		r.logger.Error("database error finding messages", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("database error fetching messages: %w", err)
	}
	return messages, nil
}

func (r *gormMessageRepository) CountByChatID(ctx context.Context, chatID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Message{}).Where("chat_id = ?", chatID).Count(&count).Error
	if err != nil {
		r.logger.Error("database error counting messages", "chat_id", chatID, "error", err)
		return 0, fmt.Errorf("database error counting messages: %w", err)
	}
	return count, nil
}

func (r *gormMessageRepository) DeleteByChatID(ctx context.Context, chatID string) error {
	result := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Delete(&domain.Message{})
	if result.Error != nil {
		r.logger.Error("database error deleting messages", "chat_id", chatID, "error", result.Error)
		return fmt.Errorf("database error deleting messages: %w", result.Error)
	}
	r.logger.Info("messages deleted", "chat_id", chatID, "count", result.RowsAffected)
	return nil
}

func validateMessageInput(message *domain.Message) error {
	if message == nil {
		return errors.New("message cannot be nil")
	}
	if message.ChatID == "" {
		return errors.New("chat ID is required")
	}
	if !domain.IsValidRole(message.Role) {
		return fmt.Errorf("invalid message role %q", message.Role)
	}
	return nil
}
