// File: internal/services/chat/streaming.go
package chat

import (
	"context"
	"strings"

	"github.com/iyunix/go-gptchat/internal/domain"
)

// StreamMessage is the streaming variant of SendMessage. The reply is stored
// only after the stream completes; an aborted stream stores nothing.
func (s *ChatService) StreamMessage(
	ctx context.Context,
	req SendMessageRequest,
	onStart func(*domain.Chat) error,
	onDelta func(string) error,
) (*SendResult, error) {
	const op = "stream_message"
	p, err := s.prepare(ctx, op, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("starting stream chat", "chat_id", p.chat.ID, "new_chat", p.created)

	if onStart != nil {
		if err := onStart(p.chat); err != nil {
			return nil, err
		}
	}

	var fullReply strings.Builder
	llmCtx, cancel := context.WithTimeout(ctx, s.config.CompletionTimeout)
	defer cancel()
	streamErr := s.aiService.StreamCompletion(llmCtx, p.messages, func(token string) error {
		fullReply.WriteString(token)
		if onDelta == nil {
			return nil
		}
		return onDelta(token)
	})
	if streamErr != nil {
		s.logger.Error("stream completion failed", "chat_id", p.chat.ID, "error", streamErr)
		return nil, NewCompletionError(op, streamErr)
	}

	// The client may already be gone; the reply is still stored.
	saveCtx, saveCancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.SaveTimeout)
	defer saveCancel()
	result, err := s.finish(saveCtx, op, p, fullReply.String())
	if err != nil {
		s.logger.Error("failed to save assistant message", "chat_id", p.chat.ID, "error", err)
		return nil, err
	}

	s.logger.Info("stream chat completed", "chat_id", p.chat.ID, "response_length", fullReply.Len())
	return result, nil
}
