package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptLimiter caps attempts per key inside a fixed window using INCR and EXPIRE.
type AttemptLimiter struct {
	rdb      *redis.Client
	resource string
	limit    int
	window   time.Duration
}

func NewAttemptLimiter(rdb *redis.Client, resource string, limit int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{rdb: rdb, resource: resource, limit: limit, window: window}
}

func (l *AttemptLimiter) key(id string) string {
	return fmt.Sprintf("rl:%s:%s", l.resource, id)
}

// Allow records an attempt for id. When the limit is exceeded it returns
// false and the time until the window resets.
func (l *AttemptLimiter) Allow(ctx context.Context, id string) (bool, time.Duration, error) {
	if l == nil || l.rdb == nil {
		return true, 0, nil
	}

	key := l.key(id)
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return true, 0, err
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return true, 0, err
		}
	}
	if count <= int64(l.limit) {
		return true, 0, nil
	}

	ttl, err := l.rdb.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = l.window
	}
	return false, ttl, nil
}

// Reset forgets the attempts recorded for id.
func (l *AttemptLimiter) Reset(ctx context.Context, id string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, l.key(id)).Err()
}
