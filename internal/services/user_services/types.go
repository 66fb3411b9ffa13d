// File: internal/services/user_services/types.go
package user_services

import "github.com/iyunix/go-gptchat/internal/domain"

// Logger defines the logging interface used across user services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// TokenIssuer mints access tokens for a user id.
type TokenIssuer interface {
	IssueToken(userID string) (string, error)
}

type SignUpRequest struct {
	// ID is optional; one is generated when empty.
	ID       string
	Email    string
	Name     string
	Password string
}

type SyncRequest struct {
	ID    string
	Email string
	Name  string
}

// AuthResult is a user together with a freshly issued token.
type AuthResult struct {
	User  *domain.User
	Token string
}
