package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/iyunix/go-gptchat/internal/domain"
)

func TestStreamMessagePersistsFullReply(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.ai.chunks = []string{"Hel", "lo ", "there"}

	var started *domain.Chat
	var sb strings.Builder
	res, err := f.svc.StreamMessage(ctx, SendMessageRequest{Message: "Hi", Identity: domain.UserIdentity("u1")},
		func(c *domain.Chat) error {
			if sb.Len() != 0 {
				t.Error("onStart must run before the first chunk")
			}
			started = c
			return nil
		},
		func(delta string) error {
			sb.WriteString(delta)
			return nil
		})
	if err != nil {
		t.Fatalf("StreamMessage: %v", err)
	}
	if started == nil || started.ID != res.Chat.ID {
		t.Fatalf("onStart chat = %+v", started)
	}
	if sb.String() != "Hello there" || res.AssistantMessage.Content != "Hello there" {
		t.Fatalf("streamed %q, stored %q", sb.String(), res.AssistantMessage.Content)
	}

	msgs, _ := f.messages.FindByChatID(ctx, res.Chat.ID)
	if len(msgs) != 2 || msgs[1].Content != "Hello there" {
		t.Fatalf("persisted = %+v", msgs)
	}
}

func TestStreamMessageAbortStoresNoReply(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.ai.chunks = []string{"a", "b"}
	gone := errors.New("client disconnected")

	res, err := f.svc.StreamMessage(ctx, SendMessageRequest{Message: "Hi", Identity: domain.GuestIdentity("1.2.3.4")},
		nil,
		func(string) error { return gone })
	if !errors.Is(err, gone) || res != nil {
		t.Fatalf("expected abort error, got %v", err)
	}

	chats, _ := f.chats.FindByGuestIP(ctx, "1.2.3.4")
	if len(chats) != 1 {
		t.Fatalf("chats = %+v", chats)
	}
	msgs, _ := f.messages.FindByChatID(ctx, chats[0].ID)
	if len(msgs) != 1 || msgs[0].Role != domain.RoleUser {
		t.Fatalf("only the user message should be stored, got %+v", msgs)
	}
}
