package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateCustomGPT(t *testing.T) {
	err := ValidateCustomGPT("", "x")
	if !errors.Is(err, ErrValidation) || !strings.Contains(err.Error(), "Name is required") {
		t.Fatalf("empty name: got %v", err)
	}

	err = ValidateCustomGPT(strings.Repeat("A", 101), "x")
	if !errors.Is(err, ErrValidation) || !strings.Contains(err.Error(), "100 characters") {
		t.Fatalf("long name: got %v", err)
	}

	err = ValidateCustomGPT("ok", "  ")
	if err == nil || !strings.Contains(err.Error(), "System prompt is required") {
		t.Fatalf("blank prompt: got %v", err)
	}

	if err := ValidateCustomGPT(strings.Repeat("A", 100), "x"); err != nil {
		t.Fatalf("100 chars should pass: %v", err)
	}
}

func TestCustomGPTApplyPartial(t *testing.T) {
	g := &CustomGPT{Name: "Tutor", Description: "d", SystemPrompt: "teach", CreatorID: "u1"}
	desc := "new description"
	public := true
	if err := g.Apply(CustomGPTPatch{Description: &desc, IsPublic: &public}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if g.Name != "Tutor" || g.SystemPrompt != "teach" {
		t.Fatalf("untouched fields changed: %+v", g)
	}
	if g.Description != desc || !g.IsPublic {
		t.Fatalf("patch not applied: %+v", g)
	}

	empty := ""
	if err := g.Apply(CustomGPTPatch{Name: &empty}); err == nil {
		t.Fatal("expected validation error")
	}
	if g.Name != "Tutor" {
		t.Fatal("failed patch must leave the entity unchanged")
	}
}

func TestCustomGPTVisibility(t *testing.T) {
	g := &CustomGPT{CreatorID: "u1"}
	if !g.IsVisibleTo("u1") || g.IsVisibleTo("u2") || g.IsVisibleTo("") {
		t.Fatal("private persona visibility wrong")
	}
	g.MakePublic()
	if !g.IsVisibleTo("u2") || !g.IsVisibleTo("") {
		t.Fatal("public persona must be visible to all")
	}
}
