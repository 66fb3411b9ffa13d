package domain

import (
	"strings"
	"testing"
)

func TestGenerateTitle(t *testing.T) {
	long := strings.Repeat("a", 60)
	got := GenerateTitle(long)
	if want := strings.Repeat("a", 50) + "..."; got != want {
		t.Fatalf("GenerateTitle(60 chars) = %q, want %q", got, want)
	}
	if len(got) != 53 {
		t.Fatalf("expected 53 bytes, got %d", len(got))
	}

	if got := GenerateTitle("short"); got != "short" {
		t.Fatalf("GenerateTitle(short) = %q", got)
	}
	if got := GenerateTitle("  padded  "); got != "padded" {
		t.Fatalf("GenerateTitle trims input, got %q", got)
	}
	if got := GenerateTitle(strings.Repeat("b", 50)); got != strings.Repeat("b", 50) {
		t.Fatalf("exactly 50 chars must not be truncated, got %q", got)
	}

	multi := strings.Repeat("é", 55)
	if got := GenerateTitle(multi); got != strings.Repeat("é", 50)+"..." {
		t.Fatalf("truncation must count characters, got %q", got)
	}
}

func TestChatOwnership(t *testing.T) {
	userChat := NewChat(UserIdentity("u1"), "hi")
	if !userChat.IsOwnedBy("u1") {
		t.Fatal("expected u1 to own chat")
	}
	if userChat.IsOwnedBy("u2") || userChat.IsOwnedBy("") {
		t.Fatal("unexpected owner match")
	}
	if userChat.GuestIP != nil {
		t.Fatal("user chat must not carry a guest ip")
	}

	guestChat := NewChat(GuestIdentity("10.0.0.1"), "hi")
	if guestChat.IsOwnedBy("u1") || guestChat.IsOwnedBy("") {
		t.Fatal("guest chat must not be owned by any user")
	}
	if !guestChat.IsGuestChat() {
		t.Fatal("expected guest chat")
	}
}

func TestChatCanBeAccessedBy(t *testing.T) {
	userChat := NewChat(UserIdentity("u1"), "hi")
	guestChat := NewChat(GuestIdentity("10.0.0.1"), "hi")

	cases := []struct {
		name string
		chat *Chat
		id   Identity
		want bool
	}{
		{"owner", userChat, UserIdentity("u1"), true},
		{"other user", userChat, UserIdentity("u2"), false},
		{"guest on user chat", userChat, GuestIdentity("10.0.0.1"), false},
		{"same guest ip", guestChat, GuestIdentity("10.0.0.1"), true},
		{"other guest ip", guestChat, GuestIdentity("10.0.0.2"), false},
		{"user on guest chat", guestChat, UserIdentity("u1"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.chat.CanBeAccessedBy(tc.id); got != tc.want {
				t.Fatalf("CanBeAccessedBy = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestChatUpdateTitle(t *testing.T) {
	c := NewChat(UserIdentity("u1"), "hi")
	if err := c.UpdateTitle("   "); err == nil {
		t.Fatal("expected error for blank title")
	}
	if err := c.UpdateTitle("  Renamed "); err != nil {
		t.Fatalf("UpdateTitle: %v", err)
	}
	if c.Title != "Renamed" {
		t.Fatalf("title = %q", c.Title)
	}
}
