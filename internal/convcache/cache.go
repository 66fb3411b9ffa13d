// Package convcache keeps recently loaded chat transcripts on the client so
// switching between conversations does not refetch them, and so a sent
// message can be shown before the server answers.
package convcache

import (
	"sync"
	"time"

	"github.com/iyunix/go-gptchat/internal/dtos"
)

// DefaultTTL is how long a loaded transcript is served without refetching.
const DefaultTTL = 5 * time.Minute

// Collection names a list whose first load is tracked.
type Collection string

const (
	Chats       Collection = "chats"
	CustomGPTs  Collection = "customGPTs"
	StarredGPTs Collection = "starredGPTs"
)

// Entry is one cached transcript.
type Entry struct {
	Chat     dtos.Chat
	Messages []dtos.Message
	LoadedAt time.Time
}

type Option func(*Cache)

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// Cache is safe for concurrent use. Expired entries are ignored by Get but
// stay in memory until overwritten or InvalidateAll.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*Entry
	loaded  map[Collection]bool
}

func New(opts ...Option) *Cache {
	c := &Cache{
		ttl:     DefaultTTL,
		now:     time.Now,
		entries: make(map[string]*Entry),
		loaded:  make(map[Collection]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the entry when it exists and now - LoadedAt < TTL.
// An entry exactly TTL old is expired.
func (c *Cache) Get(chatID string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[chatID]
	if !ok || c.now().Sub(e.LoadedAt) >= c.ttl {
		return Entry{}, false
	}
	return e.clone(), true
}

// Put overwrites the entry and stamps LoadedAt with the current time.
func (c *Cache) Put(chatID string, chat dtos.Chat, messages []dtos.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[chatID] = &Entry{
		Chat:     chat,
		Messages: append([]dtos.Message(nil), messages...),
		LoadedAt: c.now(),
	}
}

// AppendMessage adds m to the end of a cached transcript. It does nothing when
// the chat is not cached. LoadedAt is unchanged.
func (c *Cache) AppendMessage(chatID string, m dtos.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[chatID]
	if !ok {
		return false
	}
	e.Messages = append(e.Messages, m)
	return true
}

// ReplaceLastMessageContent sets the content of the final message and leaves
// its role and timestamp alone. It does nothing when the chat is not cached
// or has no messages.
func (c *Cache) ReplaceLastMessageContent(chatID, content string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[chatID]
	if !ok || len(e.Messages) == 0 {
		return false
	}
	e.Messages[len(e.Messages)-1].Content = content
	return true
}

// DiscardLastMessage drops the final message if it is an assistant message
// with no content, which is how a failed send removes its placeholder.
func (c *Cache) DiscardLastMessage(chatID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[chatID]
	if !ok || len(e.Messages) == 0 {
		return false
	}
	last := e.Messages[len(e.Messages)-1]
	if last.Role != "assistant" || last.Content != "" {
		return false
	}
	e.Messages = e.Messages[:len(e.Messages)-1]
	return true
}

// SetChat updates the chat metadata of a cached entry.
func (c *Cache) SetChat(chatID string, chat dtos.Chat) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[chatID]
	if !ok {
		return false
	}
	e.Chat = chat
	return true
}

func (c *Cache) Remove(chatID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, chatID)
}

// MarkLoaded records that a collection has been fetched at least once.
func (c *Cache) MarkLoaded(col Collection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded[col] = true
}

func (c *Cache) IsLoaded(col Collection) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded[col]
}

// InvalidateAll drops every entry and every loaded flag.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry)
	c.loaded = make(map[Collection]bool)
}

// Len counts entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (e *Entry) clone() Entry {
	out := *e
	out.Messages = append([]dtos.Message(nil), e.Messages...)
	return out
}
