// File: internal/handlers/auth_handlers.go
package handlers

import (
	"context"
	"net/http"

	"github.com/iyunix/go-gptchat/internal/domain"
	"github.com/iyunix/go-gptchat/internal/dtos"
	"github.com/iyunix/go-gptchat/internal/middleware"
	"github.com/iyunix/go-gptchat/internal/services/user_services"
)

// UserService is what the auth handlers need from the user services.
type UserService interface {
	SignUp(ctx context.Context, req user_services.SignUpRequest) (*user_services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*user_services.AuthResult, error)
	SyncGoogleUser(ctx context.Context, req user_services.SyncRequest) (*domain.User, bool, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
}

// AuthHandler holds the dependencies for authentication handlers.
type AuthHandler struct {
	users  UserService
	logger Logger
}

func NewAuthHandler(users UserService, logger Logger) *AuthHandler {
	return &AuthHandler{users: users, logger: logger}
}

// SignUp creates an account and returns it with a token.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req dtos.SignUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.users.SignUp(r.Context(), user_services.SignUpRequest{
		ID:       req.ID,
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.AuthResponse{User: dtos.ToUser(result.User), Token: result.Token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.AuthResponse{User: dtos.ToUser(result.User), Token: result.Token})
}

// Sync creates or fetches the account of an externally authenticated user.
func (h *AuthHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req dtos.SyncRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, isNew, err := h.users.SyncGoogleUser(r.Context(), user_services.SyncRequest{
		ID:    req.ID,
		Email: req.Email,
		Name:  req.Name,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.SyncResponse{User: dtos.ToUser(u), IsNew: isNew})
}

// Me returns the authenticated caller.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromContext(r.Context())
	u, err := h.users.GetUser(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.UserResponse{User: dtos.ToUser(u)})
}

// UpdateMe changes the caller's name or saved system prompt.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req dtos.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := middleware.IdentityFromContext(r.Context())
	u, err := h.users.UpdateProfile(r.Context(), id.UserID, req.Patch())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.UserResponse{User: dtos.ToUser(u)})
}
