package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/unisoruyor/apiserver/internal/observability"
	"github.com/unisoruyor/apiserver/types"
)

// LeaderboardCache stores computed leaderboards as JSON with a short TTL.
type LeaderboardCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewLeaderboardCache(rdb *redis.Client, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{rdb: rdb, ttl: ttl}
}

func leaderboardKey(days, size int) string {
	return fmt.Sprintf("leaderboard:%d:%d", days, size)
}

// Get returns the cached leaderboard and whether it was found.
func (c *LeaderboardCache) Get(ctx context.Context, days, size int) (types.Leaderboard, bool, error) {
	if c == nil || c.rdb == nil || c.ttl <= 0 {
		return types.Leaderboard{}, false, nil
	}

	raw, err := c.rdb.Get(ctx, leaderboardKey(days, size)).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.CacheRequestsTotal.WithLabelValues("leaderboard", "miss").Inc()
		return types.Leaderboard{}, false, nil
	}
	if err != nil {
		observability.CacheRequestsTotal.WithLabelValues("leaderboard", "error").Inc()
		return types.Leaderboard{}, false, err
	}

	var board types.Leaderboard
	if err := json.Unmarshal(raw, &board); err != nil {
		observability.CacheRequestsTotal.WithLabelValues("leaderboard", "error").Inc()
		return types.Leaderboard{}, false, err
	}
	observability.CacheRequestsTotal.WithLabelValues("leaderboard", "hit").Inc()
	return board, true, nil
}

func (c *LeaderboardCache) Set(ctx context.Context, days, size int, board types.Leaderboard) error {
	if c == nil || c.rdb == nil || c.ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(board)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, leaderboardKey(days, size), raw, c.ttl).Err()
}
