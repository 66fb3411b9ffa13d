package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func partText(t *testing.T, parts []genai.Part) string {
	t.Helper()
	if len(parts) != 1 {
		t.Fatalf("parts = %v", parts)
	}
	txt, ok := parts[0].(genai.Text)
	if !ok {
		t.Fatalf("part %T is not text", parts[0])
	}
	return string(txt)
}

func TestGeminiTurns(t *testing.T) {
	messages := []ChatMessage{
		{Role: "system", Content: "Be brief."},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "system", Content: "Use metric units."},
		{Role: "user", Content: "how far is the moon?"},
	}
	instruction, history, last, err := geminiTurns(messages)
	if err != nil {
		t.Fatalf("geminiTurns: %v", err)
	}
	if instruction == nil || partText(t, instruction.Parts) != "Be brief.\n\nUse metric units." {
		t.Fatalf("instruction = %+v", instruction)
	}
	if len(history) != 2 {
		t.Fatalf("history = %d turns", len(history))
	}
	if history[0].Role != "user" || partText(t, history[0].Parts) != "hi" {
		t.Errorf("history[0] = %+v", history[0])
	}
	if history[1].Role != "model" || partText(t, history[1].Parts) != "hello" {
		t.Errorf("history[1] = %+v", history[1])
	}
	if partText(t, last) != "how far is the moon?" {
		t.Errorf("last = %v", last)
	}
}

func TestGeminiTurnsEdgeCases(t *testing.T) {
	instruction, history, last, err := geminiTurns([]ChatMessage{{Role: "user", Content: "only"}})
	if err != nil || instruction != nil || len(history) != 0 || partText(t, last) != "only" {
		t.Fatalf("single turn = %v, %v, %v, %v", instruction, history, last, err)
	}

	_, _, _, err = geminiTurns([]ChatMessage{{Role: "system", Content: "nothing else"}})
	var aiErr *AIError
	if !errors.As(err, &aiErr) || aiErr.Type != ErrTypeValidation {
		t.Fatalf("system only: %v", err)
	}
}

func TestGeminiSessionCarriesHistory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderGemini
	cfg.GeminiAPIKey = "test-key"
	p, err := NewGeminiProvider(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewGeminiProvider: %v", err)
	}
	defer p.Close()

	cs, parts, err := p.session([]ChatMessage{
		{Role: "system", Content: "Be brief."},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "user", Content: "again"},
	})
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if len(cs.History) != 2 || cs.History[1].Role != "model" {
		t.Fatalf("history = %+v", cs.History)
	}
	if partText(t, parts) != "again" {
		t.Errorf("sent parts = %v", parts)
	}
}
