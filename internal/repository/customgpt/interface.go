// File: internal/repository/customgpt/interface.go
package customgpt

import (
	"context"

	"github.com/iyunix/go-gptchat/internal/domain"
)

// CustomGPTRepository handles persona data operations. Every read fills
// CreatorName from the creator's current user record when one exists.
type CustomGPTRepository interface {
	Create(ctx context.Context, gpt *domain.CustomGPT) (*domain.CustomGPT, error)
	FindByID(ctx context.Context, id string) (*domain.CustomGPT, error)
	FindByCreatorID(ctx context.Context, creatorID string) ([]domain.CustomGPT, error)
	// FindPublic returns public personas, newest first.
	FindPublic(ctx context.Context) ([]domain.CustomGPT, error)
	// FindByIDs silently skips ids that no longer exist.
	FindByIDs(ctx context.Context, ids []string) ([]domain.CustomGPT, error)
	Update(ctx context.Context, gpt *domain.CustomGPT) error
	Delete(ctx context.Context, id string) error
}

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}
