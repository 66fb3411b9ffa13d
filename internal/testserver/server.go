// Package testserver runs the full HTTP stack over in-memory storage and a
// scripted completion backend.
package testserver

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/iyunix/go-gptchat/internal/auth"
	"github.com/iyunix/go-gptchat/internal/handlers"
	"github.com/iyunix/go-gptchat/internal/identity"
	"github.com/iyunix/go-gptchat/internal/repository"
	"github.com/iyunix/go-gptchat/internal/repository/testutil"
	"github.com/iyunix/go-gptchat/internal/services/ai"
	"github.com/iyunix/go-gptchat/internal/services/chat"
	"github.com/iyunix/go-gptchat/internal/services/customgpt"
	"github.com/iyunix/go-gptchat/internal/services/user_services"
)

// ScriptedAI replies with Reply, or streams Chunks, or fails with Err.
// LastMessages holds the prompt of the most recent call.
type ScriptedAI struct {
	mu           sync.Mutex
	Reply        string
	Chunks       []string
	Err          error
	Calls        int
	LastMessages []ai.ChatMessage
}

func (s *ScriptedAI) GetCompletion(_ context.Context, messages []ai.ChatMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	s.LastMessages = messages
	return s.Reply, s.Err
}

func (s *ScriptedAI) StreamCompletion(_ context.Context, messages []ai.ChatMessage, onDelta func(string) error) error {
	s.mu.Lock()
	chunks, err := s.Chunks, s.Err
	s.Calls++
	s.LastMessages = messages
	s.mu.Unlock()
	for _, c := range chunks {
		if err := onDelta(c); err != nil {
			return err
		}
	}
	return err
}

// Prompt returns a copy of LastMessages.
func (s *ScriptedAI) Prompt() []ai.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ai.ChatMessage(nil), s.LastMessages...)
}

func (s *ScriptedAI) Set(reply string, chunks []string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reply, s.Chunks, s.Err = reply, chunks, err
}

type Server struct {
	*httptest.Server
	AI     *ScriptedAI
	Tokens *auth.Manager
	Repos  *repository.Repositories
}

// New starts a server that is closed when tb finishes.
func New(tb testing.TB) *Server {
	tb.Helper()
	db := testutil.DB(tb)
	log := testutil.NopLogger{}

	repos := repository.NewRepositories(db, log)
	tokens, err := auth.NewManager("test-secret", time.Hour)
	if err != nil {
		tb.Fatalf("token manager: %v", err)
	}
	scripted := &ScriptedAI{Reply: "Hello from the assistant", Chunks: []string{"Hello", " from", " the stream"}}

	chatSvc, err := chat.NewChatService(chat.DefaultConfig(), repos.Chats, repos.Messages, scripted, repos.CustomGPTs, repos.Users, log)
	if err != nil {
		tb.Fatalf("chat service: %v", err)
	}
	users := user_services.NewUserService(repos.Users, tokens, log)
	personas := customgpt.NewService(repos.CustomGPTs, repos.Users, log)

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:      handlers.NewAuthHandler(users, log),
		Chat:      handlers.NewChatHandler(chatSvc, log),
		CustomGPT: handlers.NewCustomGPTHandler(personas, log),
		Log:       handlers.NewLogHandler(log),
		Resolver:  identity.NewResolver(tokens, log),
		Logger:    log,
	})

	srv := httptest.NewServer(router)
	tb.Cleanup(srv.Close)
	return &Server{Server: srv, AI: scripted, Tokens: tokens, Repos: repos}
}
