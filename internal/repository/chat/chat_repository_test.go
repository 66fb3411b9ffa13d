package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iyunix/go-gptchat/internal/domain"
	"github.com/iyunix/go-gptchat/internal/repository/testutil"
)

func newRepo(t *testing.T) ChatRepository {
	t.Helper()
	return NewChatRepository(testutil.DB(t), testutil.NopLogger{})
}

func TestCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	c := domain.NewChat(domain.UserIdentity("u1"), "hello there")
	if _, err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.FindByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Title != "hello there" || got.UserID == nil || *got.UserID != "u1" || got.GuestIP != nil {
		t.Fatalf("unexpected chat: %+v", got)
	}

	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateRejectsAmbiguousOwner(t *testing.T) {
	repo := newRepo(t)
	c := domain.NewChat(domain.UserIdentity("u1"), "x")
	ip := "1.2.3.4"
	c.GuestIP = &ip
	if _, err := repo.Create(context.Background(), c); err == nil {
		t.Fatal("expected error for chat with both owners")
	}
}

func TestGuestAndUserListsAreDisjoint(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	userChat := domain.NewChat(domain.UserIdentity("u1"), "mine")
	guestChat := domain.NewChat(domain.GuestIdentity("1.2.3.4"), "guest")
	otherGuest := domain.NewChat(domain.GuestIdentity("5.6.7.8"), "other")
	for _, c := range []*domain.Chat{userChat, guestChat, otherGuest} {
		if _, err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	mine, err := repo.FindByUserID(ctx, "u1")
	if err != nil || len(mine) != 1 || mine[0].ID != userChat.ID {
		t.Fatalf("FindByUserID = %+v, %v", mine, err)
	}
	guests, err := repo.FindByGuestIP(ctx, "1.2.3.4")
	if err != nil || len(guests) != 1 || guests[0].ID != guestChat.ID {
		t.Fatalf("FindByGuestIP = %+v, %v", guests, err)
	}
}

func TestFindByUserIDOrdersByUpdatedAt(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	older := domain.NewChat(domain.UserIdentity("u1"), "older")
	newer := domain.NewChat(domain.UserIdentity("u1"), "newer")
	older.UpdatedAt = time.Now().UTC().Add(-time.Hour)
	for _, c := range []*domain.Chat{older, newer} {
		if _, err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	chats, _ := repo.FindByUserID(ctx, "u1")
	if len(chats) != 2 || chats[0].ID != newer.ID {
		t.Fatalf("expected newest first, got %+v", chats)
	}

	if err := repo.TouchUpdatedAt(ctx, older.ID); err != nil {
		t.Fatalf("TouchUpdatedAt: %v", err)
	}
	chats, _ = repo.FindByUserID(ctx, "u1")
	if chats[0].ID != older.ID {
		t.Fatalf("touched chat should sort first, got %+v", chats)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	c := domain.NewChat(domain.GuestIdentity("1.2.3.4"), "first")
	if _, err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := c.UpdateTitle("renamed"); err != nil {
		t.Fatal(err)
	}
	if err := repo.Update(ctx, c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := repo.FindByID(ctx, c.ID)
	if got.Title != "renamed" {
		t.Fatalf("title = %q", got.Title)
	}

	if err := repo.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, c.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
	if err := repo.TouchUpdatedAt(ctx, c.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("touch of deleted chat should be not found, got %v", err)
	}
}
