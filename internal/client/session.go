// File: internal/client/session.go
package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/iyunix/go-gptchat/internal/convcache"
	"github.com/iyunix/go-gptchat/internal/dtos"
)

const (
	roleUser      = "user"
	roleAssistant = "assistant"
)

// Session is the client-side state of one signed-in (or guest) user: the
// chat, persona and starred lists, and a cache of opened transcripts.
// Sends to the same chat are serialized.
type Session struct {
	api    *Client
	cache  *convcache.Cache
	logger Logger

	mu         sync.Mutex
	chats      []dtos.Chat
	customGPTs []dtos.CustomGPT
	starred    []dtos.CustomGPT
	sendLocks  map[string]chan struct{}
}

func NewSession(api *Client, cache *convcache.Cache, logger Logger) *Session {
	if cache == nil {
		cache = convcache.New()
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &Session{
		api:       api,
		cache:     cache,
		logger:    logger,
		sendLocks: make(map[string]chan struct{}),
	}
}

// Chats returns the chat list, fetching it on first use or when refresh is set.
func (s *Session) Chats(ctx context.Context, refresh bool) ([]dtos.Chat, error) {
	if !refresh && s.cache.IsLoaded(convcache.Chats) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return append([]dtos.Chat(nil), s.chats...), nil
	}
	chats, err := s.api.ListChats(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.chats = chats
	s.mu.Unlock()
	s.cache.MarkLoaded(convcache.Chats)
	return append([]dtos.Chat(nil), chats...), nil
}

// CustomGPTs returns the caller's own personas.
func (s *Session) CustomGPTs(ctx context.Context, refresh bool) ([]dtos.CustomGPT, error) {
	return s.personaList(ctx, refresh, convcache.CustomGPTs, &s.customGPTs, s.api.ListCustomGPTs)
}

func (s *Session) StarredGPTs(ctx context.Context, refresh bool) ([]dtos.CustomGPT, error) {
	return s.personaList(ctx, refresh, convcache.StarredGPTs, &s.starred, s.api.ListStarredGPTs)
}

func (s *Session) personaList(
	ctx context.Context,
	refresh bool,
	col convcache.Collection,
	dst *[]dtos.CustomGPT,
	fetch func(context.Context) ([]dtos.CustomGPT, error),
) ([]dtos.CustomGPT, error) {
	if !refresh && s.cache.IsLoaded(col) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return append([]dtos.CustomGPT(nil), (*dst)...), nil
	}
	list, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	*dst = list
	s.mu.Unlock()
	s.cache.MarkLoaded(col)
	return append([]dtos.CustomGPT(nil), list...), nil
}

// CreateCustomGPT creates a persona and adds it to the loaded own list.
func (s *Session) CreateCustomGPT(ctx context.Context, req dtos.CreateCustomGPTRequest) (*dtos.CustomGPT, error) {
	gpt, err := s.api.CreateCustomGPT(ctx, req)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.customGPTs = append([]dtos.CustomGPT{*gpt}, s.customGPTs...)
	s.mu.Unlock()
	return gpt, nil
}

// StarCustomGPT stars or unstars a persona and refetches the starred list if
// it was loaded.
func (s *Session) StarCustomGPT(ctx context.Context, id string, star bool) (bool, error) {
	res, err := s.api.StarCustomGPT(ctx, id, star)
	if err != nil {
		return false, err
	}
	if s.cache.IsLoaded(convcache.StarredGPTs) {
		if _, err := s.StarredGPTs(ctx, true); err != nil {
			s.logger.Warn("refresh starred list failed", "error", err)
		}
	}
	return res.Starred, nil
}

// OpenChat returns the transcript of a chat, from the cache while it is fresh.
func (s *Session) OpenChat(ctx context.Context, chatID string) (convcache.Entry, error) {
	if e, ok := s.cache.Get(chatID); ok {
		return e, nil
	}
	chat, err := s.api.GetChat(ctx, chatID)
	if err != nil {
		return convcache.Entry{}, err
	}
	messages, err := s.api.GetChatMessages(ctx, chatID)
	if err != nil {
		return convcache.Entry{}, err
	}
	s.cache.Put(chatID, *chat, messages)
	e, _ := s.cache.Get(chatID)
	return e, nil
}

// Transcript returns the cached transcript without fetching.
func (s *Session) Transcript(chatID string) (convcache.Entry, bool) {
	return s.cache.Get(chatID)
}

// RenameChat renames a chat and updates the cached transcript and list.
func (s *Session) RenameChat(ctx context.Context, chatID, title string) (*dtos.Chat, error) {
	chat, err := s.api.RenameChat(ctx, chatID, title)
	if err != nil {
		return nil, err
	}
	s.cache.SetChat(chatID, *chat)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.chats {
		if s.chats[i].ID == chatID {
			s.chats[i] = *chat
			break
		}
	}
	return chat, nil
}

func (s *Session) DeleteChat(ctx context.Context, chatID string) error {
	if err := s.api.DeleteChat(ctx, chatID); err != nil {
		return err
	}
	s.cache.Remove(chatID)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.chats {
		if s.chats[i].ID == chatID {
			s.chats = append(s.chats[:i], s.chats[i+1:]...)
			break
		}
	}
	return nil
}

// SendOptions are the optional parts of a send.
type SendOptions struct {
	ChatID      string
	CustomGPTID string
}

// Send posts a message. For a cached chat the user message and an empty
// assistant placeholder are appended first; the placeholder receives the
// reply, or is removed if the send fails. The user message stays either way.
func (s *Session) Send(ctx context.Context, text string, opts SendOptions) (*dtos.SendMessageResponse, error) {
	unlock, err := s.lockChat(ctx, opts.ChatID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	req, err := s.buildRequest(ctx, text, opts)
	if err != nil {
		return nil, err
	}
	userMsg := s.beginSend(opts.ChatID, text)

	res, err := s.api.SendMessage(ctx, req)
	if err != nil {
		s.failSend(opts.ChatID)
		return nil, err
	}

	if opts.ChatID != "" {
		s.cache.ReplaceLastMessageContent(opts.ChatID, res.Message.Content)
	} else {
		s.cache.Put(res.ChatID, dtos.Chat{ID: res.ChatID, Title: res.Title, CreatedAt: userMsg.CreatedAt, UpdatedAt: res.Message.CreatedAt},
			[]dtos.Message{userMsg, res.Message})
	}
	s.touchChat(res.ChatID, res.Title, res.Message.CreatedAt)
	return res, nil
}

// SendStream is Send over the streaming endpoint. The placeholder is filled
// in as chunks arrive and onDelta, if set, sees every chunk.
func (s *Session) SendStream(ctx context.Context, text string, opts SendOptions, onDelta func(string)) (string, error) {
	unlock, err := s.lockChat(ctx, opts.ChatID)
	if err != nil {
		return "", err
	}
	defer unlock()

	req, err := s.buildRequest(ctx, text, opts)
	if err != nil {
		return "", err
	}
	userMsg := s.beginSend(opts.ChatID, text)

	chatID, title := opts.ChatID, ""
	var reply strings.Builder
	err = s.api.StreamMessage(ctx, req,
		func(id, t string) {
			title = t
			if chatID == "" {
				chatID = id
				placeholder := dtos.Message{Role: roleAssistant, CreatedAt: time.Now().UTC()}
				s.cache.Put(chatID, dtos.Chat{ID: id, Title: t, CreatedAt: userMsg.CreatedAt, UpdatedAt: userMsg.CreatedAt},
					[]dtos.Message{userMsg, placeholder})
			}
		},
		func(chunk string) error {
			reply.WriteString(chunk)
			s.cache.ReplaceLastMessageContent(chatID, reply.String())
			if onDelta != nil {
				onDelta(chunk)
			}
			return nil
		},
	)
	if err != nil {
		if chatID != "" {
			// A partial reply was never stored server side.
			s.cache.ReplaceLastMessageContent(chatID, "")
			s.failSend(chatID)
		}
		return chatID, err
	}
	s.touchChat(chatID, title, time.Now().UTC())
	return chatID, nil
}

// SignOut clears every cached transcript, list and loaded flag.
func (s *Session) SignOut() {
	s.cache.InvalidateAll()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats = nil
	s.customGPTs = nil
	s.starred = nil
}

// buildRequest attaches the chat's history. A transcript that is missing or
// past its TTL is refetched first, so the model never loses context.
func (s *Session) buildRequest(ctx context.Context, text string, opts SendOptions) (dtos.SendMessageRequest, error) {
	req := dtos.SendMessageRequest{Message: text, ChatID: opts.ChatID, CustomGPTID: opts.CustomGPTID}
	if opts.ChatID == "" {
		return req, nil
	}
	e, err := s.OpenChat(ctx, opts.ChatID)
	if err != nil {
		return req, err
	}
	for _, m := range e.Messages {
		if m.Content == "" {
			continue
		}
		req.Messages = append(req.Messages, dtos.HistoryMessage{Role: m.Role, Content: m.Content})
	}
	return req, nil
}

// beginSend applies the optimistic append for a cached chat.
func (s *Session) beginSend(chatID, text string) dtos.Message {
	now := time.Now().UTC()
	userMsg := dtos.Message{Role: roleUser, Content: text, CreatedAt: now}
	if chatID != "" && s.cache.AppendMessage(chatID, userMsg) {
		s.cache.AppendMessage(chatID, dtos.Message{Role: roleAssistant, CreatedAt: now})
	}
	return userMsg
}

func (s *Session) failSend(chatID string) {
	if chatID != "" {
		s.cache.DiscardLastMessage(chatID)
	}
	s.logger.Warn("send failed", "chat_id", chatID)
}

// touchChat moves a chat to the top of the loaded list, adding it if new.
func (s *Session) touchChat(chatID, title string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := dtos.Chat{ID: chatID, Title: title, CreatedAt: at, UpdatedAt: at}
	for i := range s.chats {
		if s.chats[i].ID == chatID {
			chat = s.chats[i]
			chat.UpdatedAt = at
			s.chats = append(s.chats[:i], s.chats[i+1:]...)
			break
		}
	}
	s.chats = append([]dtos.Chat{chat}, s.chats...)
	s.cache.SetChat(chatID, chat)
}

// lockChat serializes sends per chat id. New chats have no id yet and are
// not serialized.
func (s *Session) lockChat(ctx context.Context, chatID string) (func(), error) {
	if chatID == "" {
		return func() {}, nil
	}
	s.mu.Lock()
	lock, ok := s.sendLocks[chatID]
	if !ok {
		lock = make(chan struct{}, 1)
		s.sendLocks[chatID] = lock
	}
	s.mu.Unlock()

	select {
	case lock <- struct{}{}:
		return func() { <-lock }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
