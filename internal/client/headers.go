// File: internal/client/headers.go
package client

import (
	"context"
	"net/http"
	"strings"
	"sync"
)

// TokenSource yields the current access token. An empty token with a nil
// error means the caller is signed out.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource holding one token that can be replaced.
type StaticToken struct {
	mu    sync.RWMutex
	token string
}

func NewStaticToken(token string) *StaticToken {
	return &StaticToken{token: token}
}

func (s *StaticToken) Token(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *StaticToken) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// AuthHeaders builds request headers, attaching a bearer token when one can
// be obtained. Token lookups are retried; when every attempt fails the
// request goes out with guest headers.
type AuthHeaders struct {
	tokens TokenSource
	retry  *RetryConfig
	logger Logger
}

func NewAuthHeaders(tokens TokenSource, retry *RetryConfig, logger Logger) *AuthHeaders {
	if retry == nil {
		retry = DefaultRetryConfig()
	}
	return &AuthHeaders{tokens: tokens, retry: retry, logger: logger}
}

func (a *AuthHeaders) Headers(ctx context.Context) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	if a.tokens == nil {
		return h
	}

	token, err := Retry(ctx, a.retry, a.tokens.Token)
	if err != nil {
		a.logger.Warn("token unavailable, continuing as guest", "error", err)
		return h
	}
	if token = strings.TrimSpace(token); token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
