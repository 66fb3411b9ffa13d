// File: internal/domain/custom_gpt.go
package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const CustomGPTNameMaxLength = 100

// CustomGPT is a named, reusable system prompt ("persona").
type CustomGPT struct {
	ID           string `gorm:"primaryKey;size:64"`
	Name         string `gorm:"size:100;not null"`
	Description  string `gorm:"type:text"`
	SystemPrompt string `gorm:"type:text;not null"`
	CreatorID    string `gorm:"column:user_id;index;not null;size:64"`
	CreatorName  string `gorm:"size:255"`
	IsPublic     bool   `gorm:"index;not null"`
	CreatedAt    time.Time

	// IsStarred is computed per viewer and never stored.
	IsStarred bool `gorm:"-"`
}

// CustomGPTPatch carries a partial update; nil fields are left unchanged.
type CustomGPTPatch struct {
	Name         *string
	Description  *string
	SystemPrompt *string
	IsPublic     *bool
}

// ValidateCustomGPT returns every problem with the given name and system prompt.
func ValidateCustomGPT(name, systemPrompt string) error {
	var problems []string
	if strings.TrimSpace(name) == "" {
		problems = append(problems, "Name is required")
	}
	if strings.TrimSpace(systemPrompt) == "" {
		problems = append(problems, "System prompt is required")
	}
	if utf8.RuneCountInString(name) > CustomGPTNameMaxLength {
		problems = append(problems, "Name must be 100 characters or less")
	}
	if len(problems) > 0 {
		return NewValidationError(problems...)
	}
	return nil
}

func (g *CustomGPT) IsOwnedBy(userID string) bool {
	return userID != "" && g.CreatorID == userID
}

// IsVisibleTo reports whether userID may read the persona.
func (g *CustomGPT) IsVisibleTo(userID string) bool {
	return g.IsPublic || g.IsOwnedBy(userID)
}

func (g *CustomGPT) MakePublic() { g.IsPublic = true }

func (g *CustomGPT) MakePrivate() { g.IsPublic = false }

// Apply updates only the fields present in p and validates the result.
func (g *CustomGPT) Apply(p CustomGPTPatch) error {
	next := *g
	if p.Name != nil {
		next.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		next.Description = strings.TrimSpace(*p.Description)
	}
	if p.SystemPrompt != nil {
		next.SystemPrompt = strings.TrimSpace(*p.SystemPrompt)
	}
	if p.IsPublic != nil {
		next.IsPublic = *p.IsPublic
	}
	if err := ValidateCustomGPT(next.Name, next.SystemPrompt); err != nil {
		return err
	}
	*g = next
	return nil
}
