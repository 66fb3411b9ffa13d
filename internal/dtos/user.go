// File: internal/dtos/user.go
package dtos

import (
	"time"

	"github.com/iyunix/go-gptchat/internal/domain"
)

// User defines what fields to expose in user API responses. The password hash is never exposed.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	StarredGPTIDs []string  `json:"starred_gpt_ids"`
	SystemPrompt  string    `json:"system_prompt"`
	CreatedAt     time.Time `json:"created_at"`
}

// UpdateProfileRequest is a partial update; omitted fields are unchanged and
// an empty system_prompt clears it.
type UpdateProfileRequest struct {
	Name         *string `json:"name,omitempty"`
	SystemPrompt *string `json:"system_prompt,omitempty"`
}

func (r UpdateProfileRequest) Patch() domain.UserPatch {
	return domain.UserPatch{Name: r.Name, SystemPrompt: r.SystemPrompt}
}

type SignUpRequest struct {
	ID       string `json:"id,omitempty"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SyncRequest struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type UserResponse struct {
	User User `json:"user"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type SyncResponse struct {
	User  User `json:"user"`
	IsNew bool `json:"isNew"`
}

func ToUser(u *domain.User) User {
	starred := make([]string, len(u.StarredGPTIDs))
	copy(starred, u.StarredGPTIDs)
	return User{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.DisplayName(),
		StarredGPTIDs: starred,
		SystemPrompt:  u.SystemPrompt,
		CreatedAt:     u.CreatedAt,
	}
}
