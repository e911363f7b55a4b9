package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"darshan-system/internal/status"

	"github.com/redis/go-redis/v9"
)

// locker serializes the check-then-write sequence for one slot or one
// ticket. acquire blocks until the lease is granted or fails with a
// conflict; release is best effort.
type locker interface {
	acquire(ctx context.Context, key string) error
	release(ctx context.Context, key string)
}

// lockManager hands out short-lived Redis leases. The TTL bounds how
// long a crashed holder can block others.
type lockManager struct {
	redis   *redis.Client
	ttl     time.Duration
	retry   time.Duration
	timeout time.Duration
}

func newLockManager(redisClient *redis.Client, ttl, retry, timeout time.Duration) *lockManager {
	return &lockManager{
		redis:   redisClient,
		ttl:     ttl,
		retry:   retry,
		timeout: timeout,
	}
}

func slotLockKey(date, timeRange, darshanType string) string {
	return fmt.Sprintf("lock:slot:%s:%s:%s", date, timeRange, darshanType)
}

func ticketLockKey(code string) string {
	return fmt.Sprintf("lock:ticket:%s", code)
}

// acquire polls SET NX until the lease is granted or the deadline
// passes. Contention past the deadline is reported as a conflict, not
// a dependency failure: the resource is healthy, just busy.
func (l *lockManager) acquire(ctx context.Context, key string) error {
	deadline := time.Now().Add(l.timeout)

	for {
		ok, err := l.redis.SetNX(ctx, key, "1", l.ttl).Result()
		if err != nil {
			return status.Dependency("lock service unavailable", err)
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return status.Conflict("operation already in progress, retry shortly")
		}

		select {
		case <-ctx.Done():
			return status.Dependency("lock wait cancelled", ctx.Err())
		case <-time.After(l.retry):
		}
	}
}

func (l *lockManager) release(ctx context.Context, key string) {
	if err := l.redis.Del(ctx, key).Err(); err != nil {
		slog.Error("failed to release lock", "key", key, "error", err)
	}
}
