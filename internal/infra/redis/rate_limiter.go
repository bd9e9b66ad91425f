package redis

import (
	"context"
	"time"
)

// RateLimiter is a fixed-window counter keyed per session. A redis outage
// fails open at the caller's discretion; the limiter only reports.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		err = r.client.Expire(ctx, key, window)
		if err != nil {
			return false, err
		}
	}

	if count > int64(limit) {
		return false, nil
	}

	return true, nil
}

func SessionKey(sessionID string) string {
	return "rate_limit:chat:" + sessionID
}
