// File: internal/repository/user/interface.go
package user

import (
	"context"

	"github.com/iyunix/go-gptchat/internal/domain"
)

// UserRepository handles user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateStarredGPTs(ctx context.Context, user *domain.User) error
	// UpdateProfile writes name and system prompt.
	UpdateProfile(ctx context.Context, user *domain.User) error
}

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}
