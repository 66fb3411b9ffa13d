// File: internal/services/user_services/user_service.go
package user_services

import (
	"context"

	"github.com/iyunix/go-gptchat/internal/domain"
	"github.com/iyunix/go-gptchat/internal/repository/user"
)

// UserService is the main service that composes other user-related services
type UserService struct {
	*AuthService
	userRepo user.UserRepository
}

func NewUserService(userRepo user.UserRepository, tokens TokenIssuer, logger Logger) *UserService {
	return &UserService{
		AuthService: NewAuthService(userRepo, tokens, logger),
		userRepo:    userRepo,
	}
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// UpdateProfile changes the caller's display name and system prompt.
func (s *UserService) UpdateProfile(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.ApplyPatch(patch); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("profile updated", "user_id", id, "has_system_prompt", u.SystemPrompt != "")
	return u, nil
}

// UserServiceInterface defines the complete interface for user operations
type UserServiceInterface interface {
	SignUp(ctx context.Context, req SignUpRequest) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	SyncGoogleUser(ctx context.Context, req SyncRequest) (*domain.User, bool, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
}

var _ UserServiceInterface = (*UserService)(nil)
