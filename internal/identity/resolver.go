// Package identity decides whether a request comes from an authenticated user or a guest.
package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/iyunix/go-gptchat/internal/domain"
)

// TokenVerifier validates a bearer token with the identity service and returns the user id.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
}

// Resolver has no state of its own; every call is a function of the request
// plus at most one VerifyToken call. Failed verification is treated as no token.
type Resolver struct {
	verifier TokenVerifier
	logger   Logger
}

func NewResolver(verifier TokenVerifier, logger Logger) *Resolver {
	return &Resolver{verifier: verifier, logger: logger}
}

// Resolve returns the authenticated user when a valid bearer token is present,
// and the guest identity derived from forwarding headers otherwise.
func (r *Resolver) Resolve(req *http.Request) domain.Identity {
	if userID, ok := r.authenticate(req); ok {
		return domain.UserIdentity(userID)
	}
	return domain.GuestIdentity(ClientIP(req))
}

// RequireAuth fails with domain.ErrUnauthorized unless a valid token is present.
func (r *Resolver) RequireAuth(req *http.Request) (domain.Identity, error) {
	userID, ok := r.authenticate(req)
	if !ok {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	return domain.UserIdentity(userID), nil
}

func (r *Resolver) authenticate(req *http.Request) (string, bool) {
	token, ok := BearerToken(req)
	if !ok || r.verifier == nil {
		return "", false
	}
	userID, err := r.verifier.VerifyToken(req.Context(), token)
	if err != nil || userID == "" {
		if r.logger != nil {
			r.logger.Debug("bearer token rejected, treating request as guest", "error", err)
		}
		return "", false
	}
	return userID, true
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(req *http.Request) (string, bool) {
	header := strings.TrimSpace(req.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

// ClientIP returns the first address found in X-Forwarded-For (first entry),
// X-Real-IP, then CF-Connecting-IP, or domain.UnknownGuestIP.
func ClientIP(req *http.Request) string {
	if forwarded := req.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if real := strings.TrimSpace(req.Header.Get("X-Real-IP")); real != "" {
		return real
	}
	if cf := strings.TrimSpace(req.Header.Get("CF-Connecting-IP")); cf != "" {
		return cf
	}
	return domain.UnknownGuestIP
}
