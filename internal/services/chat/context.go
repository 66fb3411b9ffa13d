// File: internal/services/chat/context.go
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/iyunix/go-gptchat/internal/domain"
	"github.com/iyunix/go-gptchat/internal/services/ai"
)

// ContextHelper assembles the message list sent to the completion backend.
type ContextHelper struct {
	config   *Config
	personas PersonaFinder
	users    UserFinder
	logger   Logger
}

func NewContextHelper(config *Config, personas PersonaFinder, users UserFinder, logger Logger) *ContextHelper {
	return &ContextHelper{config: config, personas: personas, users: users, logger: logger}
}

// SystemPrompt picks, in order: the persona's prompt when the caller may use
// it (public, or created by the caller), the caller's saved prompt, and the
// default prompt.
func (ch *ContextHelper) SystemPrompt(ctx context.Context, identity domain.Identity, customGPTID string) string {
	if prompt, ok := ch.personaPrompt(ctx, identity, customGPTID); ok {
		return prompt
	}
	if prompt, ok := ch.userPrompt(ctx, identity); ok {
		return prompt
	}
	return ch.config.DefaultSystemPrompt
}

func (ch *ContextHelper) personaPrompt(ctx context.Context, identity domain.Identity, customGPTID string) (string, bool) {
	if customGPTID == "" || ch.personas == nil {
		return "", false
	}
	gpt, err := ch.personas.FindByID(ctx, customGPTID)
	if err != nil {
		ch.logger.Warn("custom GPT lookup failed, falling back", "gpt_id", customGPTID, "error", err)
		return "", false
	}
	if !gpt.IsVisibleTo(identity.UserID) || strings.TrimSpace(gpt.SystemPrompt) == "" {
		ch.logger.Warn("custom GPT not usable by caller, falling back", "gpt_id", customGPTID)
		return "", false
	}
	return gpt.SystemPrompt, true
}

func (ch *ContextHelper) userPrompt(ctx context.Context, identity domain.Identity) (string, bool) {
	if !identity.IsAuthenticated() || ch.users == nil {
		return "", false
	}
	u, err := ch.users.FindByID(ctx, identity.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			ch.logger.Warn("user lookup failed, using default prompt", "user_id", identity.UserID, "error", err)
		}
		return "", false
	}
	if strings.TrimSpace(u.SystemPrompt) == "" {
		return "", false
	}
	return u.SystemPrompt, true
}

// History keeps role and content of caller-supplied turns, drops anything that
// is not a user or assistant turn, and keeps only the most recent
// MaxHistoryMessages entries.
func (ch *ContextHelper) History(previous []ai.ChatMessage) []ai.ChatMessage {
	history := make([]ai.ChatMessage, 0, len(previous))
	for _, m := range previous {
		if !domain.IsValidRole(domain.Role(m.Role)) || strings.TrimSpace(m.Content) == "" {
			continue
		}
		history = append(history, ai.ChatMessage{Role: m.Role, Content: m.Content})
	}
	if limit := ch.config.MaxHistoryMessages; limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history
}

// Messages is system prompt + prior turns + the new user message.
func (ch *ContextHelper) Messages(systemPrompt string, previous []ai.ChatMessage, userMessage string) []ai.ChatMessage {
	history := append(ch.History(previous), ai.ChatMessage{Role: string(domain.RoleUser), Content: userMessage})
	return ai.FormatMessages(systemPrompt, history)
}
