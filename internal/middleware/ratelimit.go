// File: internal/middleware/ratelimit.go
package middleware

import (
	"fmt"
	"math"
	"net/http"

	"github.com/iyunix/go-gptchat/internal/ratelimit"
)

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(r *http.Request) string

// KeyByIdentity counts per user id or guest IP. It must run after ResolveIdentity.
func KeyByIdentity(r *http.Request) string {
	return IdentityFromContext(r.Context()).Key()
}

// KeyByIP counts per client address.
func KeyByIP(r *http.Request) string {
	return "ip:" + ratelimit.GetClientIP(r)
}

// RateLimitMiddleware creates a rate limiting middleware. Limiter errors let
// the request through.
func RateLimitMiddleware(limiter ratelimit.Limiter, name string, key KeyFunc, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier := name + ":" + key(r)

			info, err := limiter.Allow(r.Context(), identifier)
			if err != nil {
				logger.Error("rate limiter unavailable", "limiter", name, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))

			if !info.Allowed {
				logger.Warn("rate limited", "limiter", name, "key", identifier, "banned", info.Banned)
				if info.RetryAfter > 0 {
					w.Header().Set("Retry-After", fmt.Sprintf("%d", int(math.Ceil(info.RetryAfter.Seconds()))))
				}
				writeJSONError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuthSuccessMiddleware clears the caller's counter once the wrapped handler
// answers with a 2xx status, so a successful login does not count against
// the next one. Limiters without RecordSuccess are left alone.
func AuthSuccessMiddleware(limiter ratelimit.Limiter, name string, key KeyFunc) func(http.Handler) http.Handler {
	recorder, ok := limiter.(ratelimit.SuccessRecorder)
	return func(next http.Handler) http.Handler {
		if !ok {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)
			if wrapped.statusCode >= 200 && wrapped.statusCode < 300 {
				recorder.RecordSuccess(name + ":" + key(r))
			}
		})
	}
}
