// File: internal/services/chat/service.go
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/iyunix/go-gptchat/internal/domain"
	"github.com/iyunix/go-gptchat/internal/repository/chat"
	"github.com/iyunix/go-gptchat/internal/repository/message"
	"github.com/iyunix/go-gptchat/internal/services/ai"
)

type ChatService struct {
	config      *Config
	chatRepo    chat.ChatRepository
	messageRepo message.MessageRepository
	aiService   AIProvider
	prompts     *ContextHelper
	logger      Logger
}

func NewChatService(
	config *Config,
	chatRepo chat.ChatRepository,
	messageRepo message.MessageRepository,
	aiService AIProvider,
	personas PersonaFinder,
	users UserFinder,
	logger Logger,
) (*ChatService, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ChatService{
		config:      config,
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		aiService:   aiService,
		prompts:     NewContextHelper(config, personas, users, logger),
		logger:      logger,
	}, nil
}

var _ Service = (*ChatService)(nil)

// prepared is the state shared by the sync and streaming send paths once the
// user message has been stored.
type prepared struct {
	chat     *domain.Chat
	created  bool
	messages []ai.ChatMessage
}

func (s *ChatService) prepare(ctx context.Context, operation string, req SendMessageRequest) (*prepared, error) {
	content := strings.TrimSpace(req.Message)
	if content == "" {
		return nil, NewValidationError(operation, "Message is required")
	}
	identity := req.Identity
	if !identity.IsAuthenticated() {
		identity = domain.GuestIdentity(identity.GuestIP)
	}

	p := &prepared{}
	if req.ChatID != "" {
		c, err := s.authorizedChat(ctx, operation, identity, req.ChatID)
		if err != nil {
			return nil, err
		}
		p.chat = c
	} else {
		c, err := s.chatRepo.Create(ctx, domain.NewChat(identity, content))
		if err != nil {
			return nil, NewPersistenceError(operation, "failed to create chat", err)
		}
		p.chat = c
		p.created = true
	}

	userMessage, err := domain.NewUserMessage(p.chat.ID, content)
	if err != nil {
		return nil, err
	}
	if _, err := s.messageRepo.Create(ctx, userMessage); err != nil {
		return nil, NewPersistenceError(operation, "failed to save user message", err)
	}

	systemPrompt := s.prompts.SystemPrompt(ctx, identity, req.CustomGPTID)
	p.messages = s.prompts.Messages(systemPrompt, req.PreviousMessages, content)
	return p, nil
}

// finish stores the assistant reply and bumps the chat's updated_at.
func (s *ChatService) finish(ctx context.Context, operation string, p *prepared, reply string) (*SendResult, error) {
	assistant := domain.NewAssistantMessage(p.chat.ID, reply)
	if _, err := s.messageRepo.Create(ctx, assistant); err != nil {
		return nil, NewPersistenceError(operation, "failed to save assistant message", err)
	}
	if err := s.chatRepo.TouchUpdatedAt(ctx, p.chat.ID); err != nil {
		return nil, NewPersistenceError(operation, "failed to update chat", err)
	}
	p.chat.Touch()
	return &SendResult{Chat: p.chat, AssistantMessage: assistant, Created: p.created}, nil
}

// SendMessage stores the user turn, asks the completion backend for a reply
// and stores it. A completion failure leaves the user message in place.
func (s *ChatService) SendMessage(ctx context.Context, req SendMessageRequest) (*SendResult, error) {
	const op = "send_message"
	p, err := s.prepare(ctx, op, req)
	if err != nil {
		return nil, err
	}

	llmCtx, cancel := context.WithTimeout(ctx, s.config.CompletionTimeout)
	defer cancel()
	reply, err := s.aiService.GetCompletion(llmCtx, p.messages)
	if err != nil {
		s.logger.Error("completion failed", "chat_id", p.chat.ID, "error", err)
		return nil, NewCompletionError(op, err)
	}

	result, err := s.finish(ctx, op, p, reply)
	if err != nil {
		s.logger.Error("failed to persist reply", "chat_id", p.chat.ID, "error", err)
		return nil, err
	}
	s.logger.Info("message sent", "chat_id", p.chat.ID, "new_chat", p.created, "reply_length", len(reply))
	return result, nil
}

func (s *ChatService) GetUserChats(ctx context.Context, identity domain.Identity) ([]domain.Chat, error) {
	var (
		chats []domain.Chat
		err   error
	)
	if identity.IsAuthenticated() {
		chats, err = s.chatRepo.FindByUserID(ctx, identity.UserID)
	} else {
		chats, err = s.chatRepo.FindByGuestIP(ctx, domain.GuestIdentity(identity.GuestIP).GuestIP)
	}
	if err != nil {
		return nil, NewPersistenceError("get_user_chats", "failed to fetch chats", err)
	}
	if chats == nil {
		chats = []domain.Chat{}
	}
	return chats, nil
}

func (s *ChatService) GetChat(ctx context.Context, identity domain.Identity, chatID string) (*domain.Chat, error) {
	return s.authorizedChat(ctx, "get_chat", identity, chatID)
}

func (s *ChatService) GetChatMessages(ctx context.Context, identity domain.Identity, chatID string) ([]domain.Message, error) {
	const op = "get_chat_messages"
	if _, err := s.authorizedChat(ctx, op, identity, chatID); err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.FindByChatID(ctx, chatID)
	if err != nil {
		return nil, NewPersistenceError(op, "failed to fetch messages", err)
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

func (s *ChatService) DeleteChat(ctx context.Context, identity domain.Identity, chatID string) error {
	const op = "delete_chat"
	if _, err := s.authorizedChat(ctx, op, identity, chatID); err != nil {
		return err
	}
	if err := s.messageRepo.DeleteByChatID(ctx, chatID); err != nil {
		return NewPersistenceError(op, "failed to delete messages", err)
	}
	if err := s.chatRepo.Delete(ctx, chatID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return NewNotFoundError(op, chatID)
		}
		return NewPersistenceError(op, "failed to delete chat", err)
	}
	s.logger.Info("chat deleted", "chat_id", chatID)
	return nil
}

// RenameChat sets a new title on a chat the caller owns.
func (s *ChatService) RenameChat(ctx context.Context, identity domain.Identity, chatID, title string) (*domain.Chat, error) {
	const op = "rename_chat"
	c, err := s.authorizedChat(ctx, op, identity, chatID)
	if err != nil {
		return nil, err
	}
	if err := c.UpdateTitle(title); err != nil {
		return nil, err
	}
	if err := s.chatRepo.Update(ctx, c); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, NewNotFoundError(op, chatID)
		}
		return nil, NewPersistenceError(op, "failed to rename chat", err)
	}
	s.logger.Info("chat renamed", "chat_id", chatID)
	return c, nil
}

// authorizedChat loads a chat and applies the ownership rule: user id match
// for authenticated callers, guest IP match for guests.
func (s *ChatService) authorizedChat(ctx context.Context, operation string, identity domain.Identity, chatID string) (*domain.Chat, error) {
	c, err := s.chatRepo.FindByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, NewNotFoundError(operation, chatID)
		}
		return nil, NewPersistenceError(operation, "failed to fetch chat", err)
	}
	if !identity.IsAuthenticated() {
		identity = domain.GuestIdentity(identity.GuestIP)
	}
	if !c.CanBeAccessedBy(identity) {
		s.logger.Warn("chat access denied", "chat_id", chatID, "caller", identity.Key())
		return nil, NewForbiddenError(operation, chatID)
	}
	return c, nil
}
