package ratelimit

import (
	"context"
	"net"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestLimiter(cfg *Config) (*MemoryRateLimiter, *time.Time) {
	rl := NewMemoryRateLimiter(&Config{WindowSize: cfg.WindowSize, MaxAttempts: cfg.MaxAttempts, BanDuration: cfg.BanDuration})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestMemoryRateLimiterWindow(t *testing.T) {
	ctx := context.Background()
	rl, now := newTestLimiter(&Config{WindowSize: time.Minute, MaxAttempts: 2})

	for i := 0; i < 2; i++ {
		info, _ := rl.Allow(ctx, "k")
		if !info.Allowed {
			t.Fatalf("request %d blocked", i+1)
		}
	}
	info, _ := rl.Allow(ctx, "k")
	if info.Allowed || info.Banned || info.RetryAfter != time.Minute {
		t.Fatalf("third request = %+v", info)
	}
	if other, _ := rl.Allow(ctx, "other"); !other.Allowed {
		t.Fatal("keys must be independent")
	}

	*now = now.Add(time.Minute)
	if info, _ := rl.Allow(ctx, "k"); !info.Allowed || info.Remaining != 1 {
		t.Fatalf("new window = %+v", info)
	}
}

func TestMemoryRateLimiterBan(t *testing.T) {
	ctx := context.Background()
	rl, now := newTestLimiter(&Config{WindowSize: time.Minute, MaxAttempts: 1, BanDuration: 10 * time.Minute})

	_, _ = rl.Allow(ctx, "ip")
	info, _ := rl.Allow(ctx, "ip")
	if info.Allowed || !info.Banned {
		t.Fatalf("expected ban, got %+v", info)
	}

	*now = now.Add(5 * time.Minute)
	if info, _ := rl.Allow(ctx, "ip"); info.Allowed {
		t.Fatal("still banned")
	}

	*now = now.Add(6 * time.Minute)
	if info, _ := rl.Allow(ctx, "ip"); !info.Allowed {
		t.Fatalf("ban should have expired, got %+v", info)
	}

	rl.RecordSuccess("ip")
	if info, _ := rl.Allow(ctx, "ip"); info.Remaining != 0 || !info.Allowed {
		t.Fatalf("after reset = %+v", info)
	}
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if got := GetClientIP(req); got != "10.0.0.1" {
		t.Fatalf("remote addr fallback = %q", got)
	}
	req.Header.Set("X-Forwarded-For", "1.1.1.1, 2.2.2.2")
	if got := GetClientIP(req); got != "1.1.1.1" {
		t.Fatalf("forwarded = %q", got)
	}
}

func newRedisLimiter(t *testing.T, cfg *Config) (*RedisRateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := NewRedisClient(context.Background(), mr.Addr(), "")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	return NewRedisRateLimiter(rdb, cfg, "test"), mr
}

func TestRedisRateLimiterWindow(t *testing.T) {
	ctx := context.Background()
	rl, mr := newRedisLimiter(t, &Config{WindowSize: time.Minute, MaxAttempts: 2})

	for i := 0; i < 2; i++ {
		info, err := rl.Allow(ctx, "k")
		if err != nil || !info.Allowed || info.Remaining != 1-i {
			t.Fatalf("request %d = %+v, %v", i+1, info, err)
		}
	}
	info, err := rl.Allow(ctx, "k")
	if err != nil || info.Allowed || info.Banned || info.RetryAfter <= 0 || info.RetryAfter > time.Minute {
		t.Fatalf("third request = %+v, %v", info, err)
	}
	if other, _ := rl.Allow(ctx, "other"); !other.Allowed {
		t.Fatal("keys must be independent")
	}

	mr.FastForward(time.Minute + time.Second)
	if info, _ := rl.Allow(ctx, "k"); !info.Allowed {
		t.Fatalf("new window = %+v", info)
	}
}

func TestRedisRateLimiterBan(t *testing.T) {
	ctx := context.Background()
	rl, mr := newRedisLimiter(t, &Config{WindowSize: time.Minute, MaxAttempts: 2, BanDuration: 15 * time.Minute})

	rl.Allow(ctx, "ip")
	rl.Allow(ctx, "ip")
	info, err := rl.Allow(ctx, "ip")
	if err != nil || info.Allowed || !info.Banned || info.RetryAfter != 15*time.Minute {
		t.Fatalf("over limit = %+v, %v", info, err)
	}

	mr.FastForward(2 * time.Minute)
	if info, _ := rl.Allow(ctx, "ip"); info.Allowed || !info.Banned {
		t.Fatalf("ban outlives the window, got %+v", info)
	}

	mr.FastForward(14 * time.Minute)
	if info, _ := rl.Allow(ctx, "ip"); !info.Allowed || info.Remaining != 1 {
		t.Fatalf("after ban = %+v", info)
	}
}

func TestRedisRecordSuccessClearsBan(t *testing.T) {
	ctx := context.Background()
	rl, mr := newRedisLimiter(t, &Config{WindowSize: time.Minute, MaxAttempts: 1, BanDuration: time.Hour})

	rl.Allow(ctx, "ip")
	if info, _ := rl.Allow(ctx, "ip"); !info.Banned {
		t.Fatalf("expected ban, got %+v", info)
	}
	rl.RecordSuccess("ip")
	if mr.Exists("test:ip") || mr.Exists("test:ip:ban") {
		t.Fatal("keys survived RecordSuccess")
	}
	if info, _ := rl.Allow(ctx, "ip"); !info.Allowed {
		t.Fatalf("after success = %+v", info)
	}
}

func TestNewRedisClientFailsFast(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()
	if _, err := NewRedisClient(context.Background(), addr, ""); err == nil {
		t.Fatal("expected ping error for a closed server")
	}
}
