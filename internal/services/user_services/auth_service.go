// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iyunix/go-gptchat/internal/domain"
	"github.com/iyunix/go-gptchat/internal/repository/user"
)

var (
	ErrMissingFields      = domain.NewValidationError("Missing required fields")
	ErrSyncMissingFields  = domain.NewValidationError("ID and email are required")
	ErrInvalidEmail       = domain.NewValidationError("Invalid email address")
	ErrUserExists         = domain.NewError(domain.ErrConflict, "User already exists")
	ErrInvalidCredentials = domain.NewError(domain.ErrUnauthorized, "Invalid email or password")
)

type AuthService struct {
	userRepo user.UserRepository
	tokens   TokenIssuer
	logger   Logger
}

func NewAuthService(userRepo user.UserRepository, tokens TokenIssuer, logger Logger) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens, logger: logger}
}

// SignUp creates a password account. The password is stored as a bcrypt hash.
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = domain.NewID()
	} else if _, err := s.userRepo.FindByID(ctx, id); err == nil {
		s.logger.Warn("signup rejected, id taken", "user_id", id)
		return nil, ErrUserExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		s.logger.Warn("signup rejected, email taken")
		return nil, ErrUserExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	u := &domain.User{
		ID:    id,
		Email: email,
		Name:  strings.TrimSpace(req.Name),
	}
	if u.Name == "" {
		u.Name = domain.DefaultNameFromEmail(email)
	}
	if err := u.HashPassword(req.Password); err != nil {
		return nil, err
	}

	// Sign first so a token failure never leaves an account behind.
	token, err := s.tokens.IssueToken(id)
	if err != nil {
		s.logger.Error("token generation failed", "user_id", id, "error", err)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	created, err := s.userRepo.Create(ctx, u)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, ErrUserExists
		}
		s.logger.Error("user creation failed", "user_id", id, "error", err)
		return nil, err
	}
	s.logger.Info("user signed up", "user_id", created.ID)
	return &AuthResult{User: created, Token: token}, nil
}

// Login checks email and password and returns a fresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrMissingFields
	}

	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("login failed", "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := u.ValidatePassword(password); err != nil {
		s.logger.Warn("login failed", "reason", "invalid_password", "user_id", u.ID)
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueToken(u.ID)
	if err != nil {
		s.logger.Error("token generation failed", "user_id", u.ID, "error", err)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	s.logger.Info("login successful", "user_id", u.ID)
	return &AuthResult{User: u, Token: token}, nil
}

// SyncGoogleUser makes sure an externally authenticated user has a row.
// It is idempotent: a second call returns the stored user with isNew false.
func (s *AuthService) SyncGoogleUser(ctx context.Context, req SyncRequest) (*domain.User, bool, error) {
	id := strings.TrimSpace(req.ID)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if id == "" || email == "" {
		return nil, false, ErrSyncMissingFields
	}

	existing, err := s.userRepo.FindByID(ctx, id)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	u := &domain.User{ID: id, Email: email, Name: strings.TrimSpace(req.Name)}
	if u.Name == "" {
		u.Name = domain.DefaultNameFromEmail(email)
	}
	created, err := s.userRepo.Create(ctx, u)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, false, ErrUserExists
		}
		s.logger.Error("synced user creation failed", "user_id", id, "error", err)
		return nil, false, err
	}
	s.logger.Info("external user synced", "user_id", id)
	return created, true, nil
}
