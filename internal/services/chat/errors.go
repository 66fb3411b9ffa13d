// File: internal/services/chat/errors.go
package chat

import (
	"fmt"

	"github.com/iyunix/go-gptchat/internal/domain"
)

type ErrorType string

const (
	ErrTypeValidation  ErrorType = "VALIDATION"
	ErrTypeForbidden   ErrorType = "FORBIDDEN"
	ErrTypeNotFound    ErrorType = "NOT_FOUND"
	ErrTypeCompletion  ErrorType = "COMPLETION"
	ErrTypePersistence ErrorType = "PERSISTENCE"
)

type ChatError struct {
	Type      ErrorType
	Operation string
	Message   string
	ChatID    string
	Cause     error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error { return e.Cause }

// Is lets callers match on the domain sentinels.
func (e *ChatError) Is(target error) bool {
	switch e.Type {
	case ErrTypeValidation:
		return target == domain.ErrValidation
	case ErrTypeForbidden:
		return target == domain.ErrForbidden
	case ErrTypeNotFound:
		return target == domain.ErrNotFound
	}
	return false
}

// PublicMessage is what the HTTP layer shows. Upstream failures are shown in full.
func (e *ChatError) PublicMessage() string {
	switch e.Type {
	case ErrTypeCompletion, ErrTypePersistence:
		return e.Error()
	}
	return e.Message
}

func NewValidationError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func NewNotFoundError(operation, chatID string) *ChatError {
	return &ChatError{Type: ErrTypeNotFound, Operation: operation, Message: "Chat not found", ChatID: chatID}
}

func NewForbiddenError(operation, chatID string) *ChatError {
	return &ChatError{Type: ErrTypeForbidden, Operation: operation, Message: "Unauthorized", ChatID: chatID}
}

func NewCompletionError(operation string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeCompletion, Operation: operation, Message: "AI completion failed", Cause: cause}
}

func NewPersistenceError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypePersistence, Operation: operation, Message: msg, Cause: cause}
}
