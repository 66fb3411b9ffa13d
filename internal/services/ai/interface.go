// File: internal/services/ai/interface.go
package ai

import "context"

// ChatMessage is a single turn sent to the completion backend.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ProviderStatus represents AI provider health
type ProviderStatus struct {
	IsHealthy bool
	Provider  string
	Model     string
	Message   string
}

// CompletionProvider handles chat completions.
type CompletionProvider interface {
	GetCompletion(ctx context.Context, messages []ChatMessage) (string, error)
	// StreamCompletion calls onDelta for every non-empty chunk in order. A
	// non-nil error from onDelta aborts the stream and is returned as-is.
	StreamCompletion(ctx context.Context, messages []ChatMessage, onDelta func(string) error) error
	HealthCheck(ctx context.Context) error
	GetStatus(ctx context.Context) ProviderStatus
}

// FormatMessages strips history down to role and content and prepends the
// system prompt when one is given.
func FormatMessages(systemPrompt string, history []ChatMessage) []ChatMessage {
	out := make([]ChatMessage, 0, len(history)+1)
	if systemPrompt != "" {
		out = append(out, ChatMessage{Role: "system", Content: systemPrompt})
	}
	for _, m := range history {
		out = append(out, ChatMessage{Role: m.Role, Content: m.Content})
	}
	return out
}
