// File: internal/ratelimit/redis.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter is a fixed-window limiter shared by every server instance.
// Each key is a counter that expires at the end of its window.
type RedisRateLimiter struct {
	rdb    *redis.Client
	config *Config
	prefix string
}

// NewRedisClient connects and pings so a bad address fails at startup.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func NewRedisRateLimiter(rdb *redis.Client, config *Config, prefix string) *RedisRateLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisRateLimiter{rdb: rdb, config: config, prefix: prefix}
}

// Allow counts one attempt. With a BanDuration set, going over the limit
// sets a separate ban key that blocks the caller until it expires.
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (*RateLimitInfo, error) {
	k := rl.prefix + ":" + key
	now := time.Now()

	if rl.config.BanDuration > 0 {
		banTTL, err := rl.rdb.PTTL(ctx, banKey(k)).Result()
		if err != nil {
			return nil, fmt.Errorf("redis pttl: %w", err)
		}
		if banTTL > 0 {
			return rl.blocked(now, banTTL, true), nil
		}
	}

	count, err := rl.rdb.Incr(ctx, k).Result()
	if err != nil {
		return nil, fmt.Errorf("redis incr: %w", err)
	}
	if count == 1 {
		if err := rl.rdb.PExpire(ctx, k, rl.config.WindowSize).Err(); err != nil {
			return nil, fmt.Errorf("redis expire: %w", err)
		}
	}

	ttl, err := rl.rdb.PTTL(ctx, k).Result()
	if err != nil {
		return nil, fmt.Errorf("redis pttl: %w", err)
	}
	if ttl < 0 {
		// counter lost its expiry; start a new window
		if err := rl.rdb.PExpire(ctx, k, rl.config.WindowSize).Err(); err != nil {
			return nil, fmt.Errorf("redis expire: %w", err)
		}
		ttl = rl.config.WindowSize
	}

	if int(count) > rl.config.MaxAttempts {
		if rl.config.BanDuration > 0 {
			pipe := rl.rdb.TxPipeline()
			pipe.Set(ctx, banKey(k), 1, rl.config.BanDuration)
			pipe.Del(ctx, k)
			if _, err := pipe.Exec(ctx); err != nil {
				return nil, fmt.Errorf("redis ban: %w", err)
			}
			return rl.blocked(now, rl.config.BanDuration, true), nil
		}
		return rl.blocked(now, ttl, false), nil
	}
	return &RateLimitInfo{
		Allowed:   true,
		Limit:     rl.config.MaxAttempts,
		Remaining: rl.config.MaxAttempts - int(count),
		ResetTime: now.Add(ttl),
	}, nil
}

func (rl *RedisRateLimiter) blocked(now time.Time, wait time.Duration, banned bool) *RateLimitInfo {
	return &RateLimitInfo{
		Limit:      rl.config.MaxAttempts,
		ResetTime:  now.Add(wait),
		RetryAfter: wait,
		Banned:     banned,
	}
}

// RecordSuccess clears the counter and any ban for key.
func (rl *RedisRateLimiter) RecordSuccess(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	k := rl.prefix + ":" + key
	_ = rl.rdb.Del(ctx, k, banKey(k)).Err()
}

func banKey(k string) string { return k + ":ban" }
