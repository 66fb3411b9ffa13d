package convcache

import (
	"sync"
	"testing"
	"time"

	"github.com/iyunix/go-gptchat/internal/dtos"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newCache() (*Cache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	return New(WithClock(clock.Now)), clock
}

func msg(role, content string, at time.Time) dtos.Message {
	return dtos.Message{Role: role, Content: content, CreatedAt: at}
}

func TestGetRespectsTTL(t *testing.T) {
	cases := []struct {
		name    string
		elapsed time.Duration
		want    bool
	}{
		{"fresh", 0, true},
		{"just before TTL", DefaultTTL - time.Millisecond, true},
		{"exactly TTL", DefaultTTL, false},
		{"just after TTL", DefaultTTL + time.Millisecond, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, clock := newCache()
			c.Put("c1", dtos.Chat{ID: "c1"}, nil)
			clock.Advance(tc.elapsed)
			if _, ok := c.Get("c1"); ok != tc.want {
				t.Fatalf("Get after %v = %v, want %v", tc.elapsed, ok, tc.want)
			}
		})
	}
}

func TestExpiredEntryIsKeptUntilOverwritten(t *testing.T) {
	c, clock := newCache()
	c.Put("c1", dtos.Chat{ID: "c1", Title: "old"}, nil)
	clock.Advance(DefaultTTL + time.Second)

	if _, ok := c.Get("c1"); ok {
		t.Fatal("expired entry returned")
	}
	if c.Len() != 1 {
		t.Fatal("Get must not evict")
	}

	c.Put("c1", dtos.Chat{ID: "c1", Title: "new"}, nil)
	e, ok := c.Get("c1")
	if !ok || e.Chat.Title != "new" || !e.LoadedAt.Equal(clock.Now()) {
		t.Fatalf("Put should restamp LoadedAt, got %+v", e)
	}
}

func TestAppendMessageOnAbsentChatIsNoop(t *testing.T) {
	c, _ := newCache()
	if c.AppendMessage("missing", msg("user", "hi", time.Now())) {
		t.Fatal("append reported success for absent chat")
	}
	if c.Len() != 0 {
		t.Fatal("append created an entry")
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatal("entry appeared after append")
	}
}

func TestAppendPreservesOrderAndLoadedAt(t *testing.T) {
	c, clock := newCache()
	loadedAt := clock.Now()
	c.Put("c1", dtos.Chat{ID: "c1"}, []dtos.Message{msg("user", "one", loadedAt)})
	clock.Advance(time.Minute)

	c.AppendMessage("c1", msg("assistant", "two", clock.Now()))
	c.AppendMessage("c1", msg("user", "three", clock.Now()))

	e, _ := c.Get("c1")
	if len(e.Messages) != 3 || e.Messages[0].Content != "one" || e.Messages[2].Content != "three" {
		t.Fatalf("messages = %+v", e.Messages)
	}
	if !e.LoadedAt.Equal(loadedAt) {
		t.Fatal("append must not refresh LoadedAt")
	}
}

func TestReplaceLastMessageContentScope(t *testing.T) {
	c, _ := newCache()
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Second)
	c.Put("c1", dtos.Chat{ID: "c1"}, []dtos.Message{
		msg("user", "question", t1),
		msg("assistant", "", t2),
	})

	if !c.ReplaceLastMessageContent("c1", "answer") {
		t.Fatal("replace failed")
	}
	e, _ := c.Get("c1")
	last := e.Messages[1]
	if last.Content != "answer" || last.Role != "assistant" || !last.CreatedAt.Equal(t2) {
		t.Fatalf("last = %+v", last)
	}
	if first := e.Messages[0]; first.Content != "question" || first.Role != "user" || !first.CreatedAt.Equal(t1) {
		t.Fatalf("first message changed: %+v", first)
	}

	c.Put("empty", dtos.Chat{ID: "empty"}, nil)
	if c.ReplaceLastMessageContent("empty", "x") || c.ReplaceLastMessageContent("missing", "x") {
		t.Fatal("replace must be a no-op without a last message")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	c, _ := newCache()
	c.Put("c1", dtos.Chat{ID: "c1"}, []dtos.Message{msg("user", "hi", time.Now())})

	e, _ := c.Get("c1")
	e.Messages[0].Content = "mutated"
	e.Messages = append(e.Messages, msg("user", "extra", time.Now()))

	again, _ := c.Get("c1")
	if len(again.Messages) != 1 || again.Messages[0].Content != "hi" {
		t.Fatalf("cache mutated through Get result: %+v", again.Messages)
	}
}

func TestDiscardLastMessageOnlyRemovesEmptyPlaceholder(t *testing.T) {
	c, _ := newCache()
	c.Put("c1", dtos.Chat{ID: "c1"}, []dtos.Message{msg("user", "q", time.Now()), msg("assistant", "", time.Now())})

	if !c.DiscardLastMessage("c1") {
		t.Fatal("placeholder not discarded")
	}
	if c.DiscardLastMessage("c1") {
		t.Fatal("user message must not be discarded")
	}
	e, _ := c.Get("c1")
	if len(e.Messages) != 1 || e.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v", e.Messages)
	}
}

func TestInvalidateAllClearsEntriesAndFlags(t *testing.T) {
	c, _ := newCache()
	c.Put("c1", dtos.Chat{ID: "c1"}, nil)
	for _, col := range []Collection{Chats, CustomGPTs, StarredGPTs} {
		c.MarkLoaded(col)
	}

	c.InvalidateAll()

	if c.Len() != 0 {
		t.Fatal("entries survived invalidation")
	}
	for _, col := range []Collection{Chats, CustomGPTs, StarredGPTs} {
		if c.IsLoaded(col) {
			t.Fatalf("%s still marked loaded", col)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New()
	c.Put("c1", dtos.Chat{ID: "c1"}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.AppendMessage("c1", msg("user", "x", time.Now()))
				c.ReplaceLastMessageContent("c1", "y")
				_, _ = c.Get("c1")
			}
		}()
	}
	wg.Wait()

	e, _ := c.Get("c1")
	if len(e.Messages) != 800 {
		t.Fatalf("expected 800 messages, got %d", len(e.Messages))
	}
}
