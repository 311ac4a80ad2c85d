package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/swingscan/pkg/ratelimit"
)

// RateLimiter implements sliding window rate limiting shared across processes
// ⭐ SSOT: 분산 레이트 리밋은 여기서만
type RateLimiter struct {
	client *Client
	prefix string
	poll   time.Duration
}

// RateLimitConfig defines rate limit parameters
type RateLimitConfig struct {
	Key    string        // Unique identifier (e.g., "alphavantage")
	Limit  int           // Maximum requests allowed
	Window time.Duration // Time window
}

// AlphaVantageRateLimit returns the sliding window for the upstream API
func AlphaVantageRateLimit(perMinute int) RateLimitConfig {
	return RateLimitConfig{
		Key:    "alphavantage",
		Limit:  perMinute,
		Window: time.Minute,
	}
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *Client, prefix string) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: prefix,
		poll:   250 * time.Millisecond,
	}
}

var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])
	local member = ARGV[5]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local count = redis.call('ZCARD', key)

	if count < limit then
		redis.call('ZADD', key, now, member)
		redis.call('PEXPIRE', key, window_ms)
		return {1, limit - count - 1}
	else
		return {0, 0}
	end
`)

// Allow checks if a request is allowed under the rate limit
// Returns (allowed, remaining, error)
func (r *RateLimiter) Allow(ctx context.Context, cfg RateLimitConfig) (bool, int, error) {
	if !r.client.Enabled() {
		return true, cfg.Limit, nil
	}

	key := fmt.Sprintf("%s:ratelimit:%s", r.prefix, cfg.Key)
	now := time.Now()
	windowStart := now.Add(-cfg.Window).UnixMilli()

	// Members must be unique per request, not per millisecond
	member := fmt.Sprintf("%d", now.UnixNano())

	result, err := slidingWindowScript.Run(ctx, r.client.Redis(), []string{key},
		now.UnixMilli(),
		windowStart,
		cfg.Limit,
		cfg.Window.Milliseconds(),
		member,
	).Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit script failed: %w", err)
	}

	allowed := result[0].(int64) == 1
	remaining := int(result[1].(int64))

	return allowed, remaining, nil
}

// Wait blocks until a request is allowed or context is done
func (r *RateLimiter) Wait(ctx context.Context, cfg RateLimitConfig) error {
	for {
		allowed, _, err := r.Allow(ctx, cfg)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ratelimit.ErrLimited, ctx.Err())
		case <-time.After(r.poll):
		}
	}
}

// For binds the limiter to one config so it satisfies httputil.Limiter
func (r *RateLimiter) For(cfg RateLimitConfig) *BoundLimiter {
	return &BoundLimiter{limiter: r, cfg: cfg}
}

// BoundLimiter is a RateLimiter fixed to a single RateLimitConfig
type BoundLimiter struct {
	limiter *RateLimiter
	cfg     RateLimitConfig
}

// Wait blocks until the bound window has room
func (b *BoundLimiter) Wait(ctx context.Context) error {
	return b.limiter.Wait(ctx, b.cfg)
}
