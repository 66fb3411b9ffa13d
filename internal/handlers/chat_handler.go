// File: internal/handlers/chat_handler.go
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/iyunix/go-gptchat/internal/domain"
	"github.com/iyunix/go-gptchat/internal/dtos"
	"github.com/iyunix/go-gptchat/internal/middleware"
	"github.com/iyunix/go-gptchat/internal/services/ai"
	"github.com/iyunix/go-gptchat/internal/services/chat"
)

type ChatHandler struct {
	chats  chat.Service
	logger Logger
}

func NewChatHandler(chats chat.Service, logger Logger) *ChatHandler {
	return &ChatHandler{chats: chats, logger: logger}
}

func (h *ChatHandler) sendRequest(w http.ResponseWriter, r *http.Request) (chat.SendMessageRequest, bool) {
	var body dtos.SendMessageRequest
	if !decodeJSON(w, r, &body) {
		return chat.SendMessageRequest{}, false
	}
	previous := make([]ai.ChatMessage, 0, len(body.Messages))
	for _, m := range body.Messages {
		previous = append(previous, ai.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return chat.SendMessageRequest{
		Message:          body.Message,
		ChatID:           body.ChatID,
		Identity:         middleware.IdentityFromContext(r.Context()),
		CustomGPTID:      body.CustomGPTID,
		PreviousMessages: previous,
	}, true
}

// SendMessage handles a non-streaming chat turn.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	req, ok := h.sendRequest(w, r)
	if !ok {
		return
	}
	result, err := h.chats.SendMessage(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.SendMessageResponse{
		ChatID:  result.Chat.ID,
		Title:   result.Chat.Title,
		Message: dtos.ToMessage(result.AssistantMessage),
	})
}

// StreamMessage writes the reply as raw text chunks. The chat id and title
// travel in headers; the end of the body marks the end of the reply.
func (h *ChatHandler) StreamMessage(w http.ResponseWriter, r *http.Request) {
	req, ok := h.sendRequest(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	started := false
	_, err := h.chats.StreamMessage(r.Context(), req,
		func(c *domain.Chat) error {
			w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("Connection", "keep-alive")
			w.Header().Set("X-Accel-Buffering", "no")
			w.Header().Set("X-Chat-Id", c.ID)
			w.Header().Set("X-Chat-Title", c.Title)
			w.WriteHeader(http.StatusOK)
			flusher.Flush()
			started = true
			return nil
		},
		func(delta string) error {
			if _, err := w.Write([]byte(delta)); err != nil {
				return err
			}
			flusher.Flush()
			return nil
		},
	)
	if err != nil {
		if !started {
			writeServiceError(w, h.logger, err)
			return
		}
		// Headers are gone. Abort the connection so the client sees a
		// truncated body instead of a clean end of stream.
		h.logger.Error("stream aborted", "error", err)
		panic(http.ErrAbortHandler)
	}
}

func (h *ChatHandler) GetUserChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.chats.GetUserChats(r.Context(), middleware.IdentityFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.ChatsResponse{Chats: dtos.ToChats(chats)})
}

func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	c, err := h.chats.GetChat(r.Context(), middleware.IdentityFromContext(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.ChatResponse{Chat: dtos.ToChat(c)})
}

func (h *ChatHandler) GetChatMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chats.GetChatMessages(r.Context(), middleware.IdentityFromContext(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.MessagesResponse{Messages: dtos.ToMessages(messages)})
}

func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	if err := h.chats.DeleteChat(r.Context(), middleware.IdentityFromContext(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.SuccessResponse{Success: true})
}

// RenameChat sets a chat's title.
func (h *ChatHandler) RenameChat(w http.ResponseWriter, r *http.Request) {
	var req dtos.RenameChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.chats.RenameChat(r.Context(), middleware.IdentityFromContext(r.Context()), mux.Vars(r)["id"], req.Title)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.ChatResponse{Chat: dtos.ToChat(c)})
}
