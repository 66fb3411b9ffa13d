package identity

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/iyunix/go-gptchat/internal/domain"
)

type stubVerifier struct {
	valid map[string]string
	calls int
}

func (s *stubVerifier) VerifyToken(_ context.Context, token string) (string, error) {
	s.calls++
	if id, ok := s.valid[token]; ok {
		return id, nil
	}
	return "", errors.New("invalid token")
}

func TestClientIPFallbackOrder(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded first entry", map[string]string{"X-Forwarded-For": " 1.1.1.1 , 2.2.2.2", "X-Real-IP": "3.3.3.3"}, "1.1.1.1"},
		{"real ip", map[string]string{"X-Real-IP": "3.3.3.3", "CF-Connecting-IP": "4.4.4.4"}, "3.3.3.3"},
		{"cloudflare", map[string]string{"CF-Connecting-IP": "4.4.4.4"}, "4.4.4.4"},
		{"none", nil, "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req); got != tc.want {
				t.Fatalf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	v := &stubVerifier{valid: map[string]string{"good": "u1"}}
	r := NewResolver(v, nil)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	req.Header.Set("X-Forwarded-For", "9.9.9.9")
	if got := r.Resolve(req); got != domain.UserIdentity("u1") {
		t.Fatalf("Resolve = %+v", got)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	req.Header.Set("X-Forwarded-For", "9.9.9.9")
	if got := r.Resolve(req); got != domain.GuestIdentity("9.9.9.9") {
		t.Fatalf("invalid token should resolve to guest, got %+v", got)
	}

	calls := v.calls
	req = httptest.NewRequest("GET", "/", nil)
	if got := r.Resolve(req); got != domain.GuestIdentity("unknown") {
		t.Fatalf("Resolve = %+v", got)
	}
	if v.calls != calls {
		t.Fatal("verifier must not be called without a token")
	}
}

func TestRequireAuth(t *testing.T) {
	r := NewResolver(&stubVerifier{valid: map[string]string{"good": "u1"}}, nil)

	req := httptest.NewRequest("GET", "/", nil)
	if _, err := r.RequireAuth(req); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	req.Header.Set("Authorization", "bearer good")
	id, err := r.RequireAuth(req)
	if err != nil || id.UserID != "u1" {
		t.Fatalf("RequireAuth = %+v, %v", id, err)
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	if _, ok := BearerToken(req); ok {
		t.Fatal("basic auth is not a bearer token")
	}
	req.Header.Set("Authorization", "Bearer ")
	if _, ok := BearerToken(req); ok {
		t.Fatal("empty bearer token accepted")
	}
}
