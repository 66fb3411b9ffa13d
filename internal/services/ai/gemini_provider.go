// File: internal/services/ai/gemini_provider.go
package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiProvider maps the chat message list onto a Gemini chat session: system
// messages become the system instruction, earlier turns become history and the
// final turn is sent.
type GeminiProvider struct {
	config *Config
	client *genai.Client
}

func NewGeminiProvider(ctx context.Context, config *Config) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(config.GeminiAPIKey))
	if err != nil {
		return nil, NewProviderError("init", "failed to create Gemini client", err)
	}
	return &GeminiProvider{config: config, client: client}, nil
}

func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

// geminiTurns splits messages into the system instruction, the history and
// the parts of the final turn. Assistant turns use Gemini's "model" role.
func geminiTurns(messages []ChatMessage) (*genai.Content, []*genai.Content, []genai.Part, error) {
	var system []string
	var turns []*genai.Content
	for _, m := range messages {
		if m.Role == "system" {
			system = append(system, m.Content)
			continue
		}
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		turns = append(turns, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}
	if len(turns) == 0 {
		return nil, nil, nil, newValidationError("completion", "no conversation turns to send")
	}

	var instruction *genai.Content
	if len(system) > 0 {
		instruction = &genai.Content{Parts: []genai.Part{genai.Text(strings.Join(system, "\n\n"))}}
	}
	last := turns[len(turns)-1]
	return instruction, turns[:len(turns)-1], last.Parts, nil
}

func (p *GeminiProvider) session(messages []ChatMessage) (*genai.ChatSession, []genai.Part, error) {
	instruction, history, parts, err := geminiTurns(messages)
	if err != nil {
		return nil, nil, err
	}

	model := p.client.GenerativeModel(p.config.GeminiModel)
	model.SetTemperature(p.config.Temperature)
	model.SetMaxOutputTokens(int32(p.config.MaxTokens))
	model.SystemInstruction = instruction

	cs := model.StartChat()
	cs.History = history
	return cs, parts, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}

func (p *GeminiProvider) GetCompletion(ctx context.Context, messages []ChatMessage) (string, error) {
	cs, parts, err := p.session(messages)
	if err != nil {
		return "", err
	}
	resp, err := cs.SendMessage(ctx, parts...)
	if err != nil {
		return "", NewProviderError("completion", "Gemini request failed", err)
	}
	text := responseText(resp)
	if text == "" {
		return "", newEmptyResponseError("completion", p.config.GeminiModel)
	}
	return text, nil
}

func (p *GeminiProvider) StreamCompletion(ctx context.Context, messages []ChatMessage, onDelta func(string) error) error {
	cs, parts, err := p.session(messages)
	if err != nil {
		return err
	}
	iter := cs.SendMessageStream(ctx, parts...)
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return NewProviderError("streaming", "Gemini stream error", err)
		}
		if delta := responseText(resp); delta != "" && onDelta != nil {
			if cbErr := onDelta(delta); cbErr != nil {
				return cbErr
			}
		}
	}
}

func (p *GeminiProvider) HealthCheck(ctx context.Context) error {
	if _, err := p.client.GenerativeModel(p.config.GeminiModel).Info(ctx); err != nil {
		return NewProviderError("health", "model info failed", err)
	}
	return nil
}

func (p *GeminiProvider) GetStatus(ctx context.Context) ProviderStatus {
	status := ProviderStatus{Provider: ProviderGemini, Model: p.config.GeminiModel}
	if err := p.HealthCheck(ctx); err != nil {
		status.Message = err.Error()
		return status
	}
	status.IsHealthy = true
	status.Message = "Gemini provider healthy"
	return status
}

var _ CompletionProvider = (*GeminiProvider)(nil)
