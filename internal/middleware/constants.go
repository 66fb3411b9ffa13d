// File: internal/middleware/constants.go
package middleware

import (
	"context"

	"github.com/iyunix/go-gptchat/internal/domain"
)

// Context keys for middleware communication
type contextKey string

const (
	IdentityKey contextKey = "identity"
)

// Logger is the logging interface the middleware writes through.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// IdentityFromContext returns the identity stored by ResolveIdentity. Requests
// that did not pass through it resolve to the unknown guest.
func IdentityFromContext(ctx context.Context) domain.Identity {
	if id, ok := ctx.Value(IdentityKey).(domain.Identity); ok {
		return id
	}
	return domain.GuestIdentity("")
}
