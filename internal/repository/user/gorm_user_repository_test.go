package user

import (
	"context"
	"errors"
	"testing"

	"github.com/iyunix/go-gptchat/internal/domain"
	"github.com/iyunix/go-gptchat/internal/repository/testutil"
)

func TestCreateAndFindByEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewGormUserRepository(testutil.DB(t), testutil.NopLogger{})

	u := &domain.User{ID: "u1", Email: "  Alice@Example.com "}
	if _, err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if got.ID != "u1" {
		t.Fatalf("got %+v", got)
	}

	dup := &domain.User{ID: "u2", Email: "alice@example.com"}
	if _, err := repo.Create(ctx, dup); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if _, err := repo.FindByID(ctx, "nobody"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateStarredGPTs(t *testing.T) {
	ctx := context.Background()
	repo := NewGormUserRepository(testutil.DB(t), testutil.NopLogger{})

	u := &domain.User{ID: "u1", Email: "a@b.c"}
	if _, err := repo.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	u.StarGPT("g1")
	u.StarGPT("g2")
	if err := repo.UpdateStarredGPTs(ctx, u); err != nil {
		t.Fatalf("UpdateStarredGPTs: %v", err)
	}

	got, _ := repo.FindByID(ctx, "u1")
	if !got.HasStarredGPT("g1") || !got.HasStarredGPT("g2") || len(got.StarredGPTIDs) != 2 {
		t.Fatalf("starred = %v", got.StarredGPTIDs)
	}

	missing := &domain.User{ID: "ghost"}
	if err := repo.UpdateStarredGPTs(ctx, missing); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo := NewGormUserRepository(testutil.DB(t), testutil.NopLogger{})

	u := &domain.User{ID: "u1", Email: "a@b.c", Name: "Ann"}
	if _, err := repo.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	u.Name = "Annie"
	u.SystemPrompt = "Answer in French."
	if err := repo.UpdateProfile(ctx, u); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	got, _ := repo.FindByID(ctx, "u1")
	if got.Name != "Annie" || got.SystemPrompt != "Answer in French." {
		t.Fatalf("got %+v", got)
	}

	u.SystemPrompt = ""
	if err := repo.UpdateProfile(ctx, u); err != nil {
		t.Fatalf("clear prompt: %v", err)
	}
	if got, _ := repo.FindByID(ctx, "u1"); got.SystemPrompt != "" {
		t.Fatalf("prompt not cleared: %q", got.SystemPrompt)
	}

	if err := repo.UpdateProfile(ctx, &domain.User{ID: "ghost"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
