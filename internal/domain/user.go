// File: internal/domain/user.go
package domain

import (
	"errors"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

const (
	MinPasswordLength         = 6
	UserSystemPromptMaxLength = 4000
)

type User struct {
	ID            string                      `gorm:"primaryKey;size:64"`
	Email         string                      `gorm:"uniqueIndex;not null;size:255"`
	Name          string                      `gorm:"size:255"`
	Password      string                      `gorm:"not null"` // bcrypt hash, empty for OAuth-only accounts
	StarredGPTIDs datatypes.JSONSlice[string] `gorm:"column:starred_gpt_ids"`
	// SystemPrompt replaces the server default for chats without a persona.
	SystemPrompt string `gorm:"type:text"`
	CreatedAt    time.Time
}

// UserPatch carries a profile update; nil fields are left unchanged.
type UserPatch struct {
	Name         *string
	SystemPrompt *string
}

// ApplyPatch validates and applies p. A blank system prompt clears the
// preference.
func (u *User) ApplyPatch(p UserPatch) error {
	var problems []string
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		problems = append(problems, "Name cannot be empty")
	}
	if p.SystemPrompt != nil && utf8.RuneCountInString(strings.TrimSpace(*p.SystemPrompt)) > UserSystemPromptMaxLength {
		problems = append(problems, "System prompt must be 4000 characters or less")
	}
	if len(problems) > 0 {
		return NewValidationError(problems...)
	}
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.SystemPrompt != nil {
		u.SystemPrompt = strings.TrimSpace(*p.SystemPrompt)
	}
	return nil
}

// HashPassword securely hashes the user's password.
func (u *User) HashPassword(password string) error {
	if len(password) < MinPasswordLength {
		return NewValidationError("Password must be at least 6 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// ValidatePassword compares a plain-text password with the stored hash.
func (u *User) ValidatePassword(password string) error {
	if u.Password == "" {
		return errors.New("account has no password")
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

func (u *User) HasStarredGPT(gptID string) bool {
	return slices.Contains(u.StarredGPTIDs, gptID)
}

// StarGPT adds gptID to the starred set. It reports whether the set changed.
func (u *User) StarGPT(gptID string) bool {
	if u.HasStarredGPT(gptID) {
		return false
	}
	u.StarredGPTIDs = append(u.StarredGPTIDs, gptID)
	return true
}

// UnstarGPT removes gptID from the starred set. It reports whether the set changed.
func (u *User) UnstarGPT(gptID string) bool {
	if !u.HasStarredGPT(gptID) {
		return false
	}
	kept := make([]string, 0, len(u.StarredGPTIDs)-1)
	for _, id := range u.StarredGPTIDs {
		if id != gptID {
			kept = append(kept, id)
		}
	}
	u.StarredGPTIDs = kept
	return true
}

func (u *User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return DefaultNameFromEmail(u.Email)
}

// DefaultNameFromEmail returns the local part of an address.
func DefaultNameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
