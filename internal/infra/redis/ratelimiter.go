package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/boardkit/api/pkg/logger"
)

// allowScript checks and consumes one request token atomically. It is
// compiled once at package initialization.
var allowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local window_ms = tonumber(ARGV[3])
	local limit = tonumber(ARGV[4])
	local request_id = ARGV[5]

	-- Remove expired entries
	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	-- Count current requests
	local count = redis.call('ZCARD', key)

	if count < limit then
		redis.call('ZADD', key, now, request_id)
		redis.call('PEXPIRE', key, window_ms)
		return {1, limit - count - 1, now + window_ms}
	else
		local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
		local retry_at = oldest[2] and (tonumber(oldest[2]) + window_ms) or (now + window_ms)
		return {0, 0, retry_at}
	end
`)

// RateLimiter implements distributed rate limiting with the sliding
// window log algorithm on Redis sorted sets. It throttles invite-link
// redemption, where tokens are the only secret and a brute-force
// attempt must stay expensive.
type RateLimiter struct {
	client    *Client
	keyPrefix string
	limit     int
	window    time.Duration
	logger    *logger.Logger
}

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	// Allowed indicates if the request is permitted.
	Allowed bool

	// Remaining is the number of requests left in the current window.
	Remaining int

	// ResetAt is when the rate limit window resets.
	ResetAt time.Time

	// RetryAt is when the client should retry (only set when not allowed).
	RetryAt time.Time
}

// NewRateLimiter creates a new distributed rate limiter.
func NewRateLimiter(client *Client, keyPrefix string, limit int, window time.Duration, log *logger.Logger) *RateLimiter {
	return &RateLimiter{
		client:    client,
		keyPrefix: keyPrefix,
		limit:     limit,
		window:    window,
		logger:    log.With("component", "ratelimiter"),
	}
}

// Allow checks whether one request for the given subject fits in the
// current window and consumes a slot if it does.
func (rl *RateLimiter) Allow(ctx context.Context, subject string) (*RateLimitResult, error) {
	key := fmt.Sprintf("%s:%s", rl.keyPrefix, subject)
	now := time.Now()
	windowStart := now.Add(-rl.window)

	res, err := allowScript.Run(ctx, rl.client.Client(), []string{key},
		now.UnixMilli(),
		windowStart.UnixMilli(),
		rl.window.Milliseconds(),
		rl.limit,
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("unexpected rate limit script result: %v", res)
	}

	result := &RateLimitResult{
		Allowed:   res[0] == 1,
		Remaining: int(res[1]),
		ResetAt:   time.UnixMilli(res[2]),
	}
	if !result.Allowed {
		result.RetryAt = time.UnixMilli(res[2])
	}
	return result, nil
}

// Reset clears the window for a subject.
func (rl *RateLimiter) Reset(ctx context.Context, subject string) error {
	key := fmt.Sprintf("%s:%s", rl.keyPrefix, subject)
	if err := rl.client.Client().Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit: %w", err)
	}
	return nil
}
