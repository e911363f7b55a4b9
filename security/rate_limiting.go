package security

import (
	"context"
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(redisClient *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{redis: redisClient, limit: limit, window: window}
}

// ScanRateLimit caps scan requests per client inside a fixed window.
// Counting is best effort: if Redis is unreachable the request passes
// through rather than blocking the gates.
func (r *RateLimiter) ScanRateLimit() func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		key := fmt.Sprintf("ratelimit:scan:%s", r.identify(e))
		if err := r.allow(e.Request.Context(), key); err != nil {
			return err
		}
		return e.Next()
	}
}

func (r *RateLimiter) allow(ctx context.Context, key string) error {
	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		return nil
	}

	if count == 1 {
		r.redis.Expire(ctx, key, r.window)
	} else if ttl, err := r.redis.TTL(ctx, key).Result(); err == nil && ttl < 0 {
		// The Expire after the first INCR was lost; re-arm so the
		// window cannot become permanent.
		r.redis.Expire(ctx, key, r.window)
	}

	if count > int64(r.limit) {
		return apis.NewApiError(429, "Too many scan requests. Please try again later.", nil)
	}
	return nil
}

func (r *RateLimiter) identify(e *core.RequestEvent) string {
	if e.Auth != nil {
		return "user:" + e.Auth.Id
	}
	return e.RealIP()
}
