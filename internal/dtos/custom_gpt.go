// File: internal/dtos/custom_gpt.go
package dtos

import (
	"time"

	"github.com/iyunix/go-gptchat/internal/domain"
)

type CustomGPT struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	SystemPrompt string    `json:"system_prompt"`
	CreatorID    string    `json:"creator_id"`
	CreatorName  string    `json:"creator_name"`
	IsPublic     bool      `json:"is_public"`
	IsStarred    bool      `json:"is_starred"`
	CreatedAt    time.Time `json:"created_at"`
}

type CreateCustomGPTRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	SystemPrompt string `json:"systemPrompt"`
	IsPublic     bool   `json:"isPublic"`
}

// UpdateCustomGPTRequest changes only the fields present in the body.
type UpdateCustomGPTRequest struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	SystemPrompt *string `json:"systemPrompt,omitempty"`
	IsPublic     *bool   `json:"isPublic,omitempty"`
}

func (r UpdateCustomGPTRequest) Patch() domain.CustomGPTPatch {
	return domain.CustomGPTPatch{
		Name:         r.Name,
		Description:  r.Description,
		SystemPrompt: r.SystemPrompt,
		IsPublic:     r.IsPublic,
	}
}

type CustomGPTResponse struct {
	CustomGPT CustomGPT `json:"customGPT"`
}

type CustomGPTsResponse struct {
	CustomGPTs []CustomGPT `json:"customGPTs"`
}

type StarResponse struct {
	Success bool `json:"success"`
	Starred bool `json:"starred"`
}

func ToCustomGPT(g *domain.CustomGPT) CustomGPT {
	return CustomGPT{
		ID:           g.ID,
		Name:         g.Name,
		Description:  g.Description,
		SystemPrompt: g.SystemPrompt,
		CreatorID:    g.CreatorID,
		CreatorName:  g.CreatorName,
		IsPublic:     g.IsPublic,
		IsStarred:    g.IsStarred,
		CreatedAt:    g.CreatedAt,
	}
}

func ToCustomGPTs(gpts []domain.CustomGPT) []CustomGPT {
	out := make([]CustomGPT, 0, len(gpts))
	for i := range gpts {
		out = append(out, ToCustomGPT(&gpts[i]))
	}
	return out
}
