package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iyunix/go-gptchat/internal/domain"
	"github.com/iyunix/go-gptchat/internal/identity"
	"github.com/iyunix/go-gptchat/internal/ratelimit"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

type tokenMap map[string]string

func (m tokenMap) VerifyToken(_ context.Context, token string) (string, error) {
	if id, ok := m[token]; ok {
		return id, nil
	}
	return "", errors.New("bad token")
}

func TestResolveIdentityAndRequireAuth(t *testing.T) {
	resolver := identity.NewResolver(tokenMap{"t1": "u1"}, nil)
	var seen domain.Identity
	h := ResolveIdentity(resolver)(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = IdentityFromContext(r.Context())
	})))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("guest status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req.Header.Set("Authorization", "Bearer t1")
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || seen.UserID != "u1" {
		t.Fatalf("status = %d, identity = %+v", rec.Code, seen)
	}
}

func TestRecoverPanic(t *testing.T) {
	h := RecoverPanic(nopLogger{})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRequestLoggerKeepsFlusher(t *testing.T) {
	h := RequestLogger(nopLogger{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := w.(http.Flusher); !ok {
			t.Error("wrapped writer lost http.Flusher")
		}
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.NewMemoryRateLimiter(&ratelimit.Config{WindowSize: time.Minute, MaxAttempts: 1})
	defer limiter.Close()
	h := RateLimitMiddleware(limiter, "chat", KeyByIP, nopLogger{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("POST", "/api/chat", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") == "" {
		t.Fatalf("second request status = %d, retry-after = %q", rec.Code, rec.Header().Get("Retry-After"))
	}
}

func TestAuthSuccessMiddlewareResetsCounter(t *testing.T) {
	limiter := ratelimit.NewMemoryRateLimiter(&ratelimit.Config{WindowSize: time.Minute, MaxAttempts: 1})
	defer limiter.Close()

	status := http.StatusOK
	login := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(status) })
	h := RateLimitMiddleware(limiter, "auth", KeyByIP, nopLogger{})(AuthSuccessMiddleware(limiter, "auth", KeyByIP)(login))

	req := httptest.NewRequest("POST", "/api/auth/login", nil)
	req.Header.Set("X-Forwarded-For", "5.6.7.8")
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("successful login #%d status = %d", i+1, rec.Code)
		}
	}

	status = http.StatusUnauthorized
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("failed logins not limited: %d", rec.Code)
	}
}
