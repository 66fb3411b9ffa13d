// File: internal/handlers/log_handler.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/iyunix/go-gptchat/internal/middleware"
)

// ClientLogPayload is a log line reported by a client, e.g. a failed send.
type ClientLogPayload struct {
	Level   string      `json:"level"`
	Message string      `json:"message"`
	ChatID  string      `json:"chatId,omitempty"`
	Context interface{} `json:"context,omitempty"`
}

type LogHandler struct {
	logger Logger
}

func NewLogHandler(logger Logger) *LogHandler {
	return &LogHandler{logger: logger}
}

// LogClientEvent records a client log line at the level it names.
func (h *LogHandler) LogClientEvent(w http.ResponseWriter, r *http.Request) {
	var payload ClientLogPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		writeError(w, "Message is required", http.StatusBadRequest)
		return
	}

	kv := []interface{}{
		"message", payload.Message,
		"actor", middleware.IdentityFromContext(r.Context()).Key(),
		"chat_id", payload.ChatID,
		"context", payload.Context,
	}
	switch strings.ToLower(payload.Level) {
	case "error":
		h.logger.Error("client log", kv...)
	case "warn", "warning":
		h.logger.Warn("client log", kv...)
	case "debug":
		h.logger.Debug("client log", kv...)
	default:
		h.logger.Info("client log", kv...)
	}
	w.WriteHeader(http.StatusNoContent)
}
