package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unisoruyor/apiserver/config"
	"github.com/unisoruyor/apiserver/types"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestOpen(t *testing.T) {
	client, err := Open(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err = Open(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NotNil(t, client)
	_ = client.Close()
}

func TestLeaderboardCache_RoundTrip(t *testing.T) {
	mr, rdb := setupRedis(t)
	c := NewLeaderboardCache(rdb, 30*time.Second)
	ctx := context.Background()

	_, found, err := c.Get(ctx, 7, 7)
	require.NoError(t, err)
	assert.False(t, found)

	board := types.Leaderboard{
		Entries:     []types.LeaderboardEntry{{Rank: 1, UserID: 3, Username: "ayse", QuestionCount: 2, AnswerCount: 1, Total: 3}},
		WindowDays:  7,
		GeneratedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, c.Set(ctx, 7, 7, board))
	assert.True(t, mr.Exists("leaderboard:7:7"))

	cached, found, err := c.Get(ctx, 7, 7)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, board, cached)

	mr.FastForward(31 * time.Second)
	_, found, err = c.Get(ctx, 7, 7)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLeaderboardCache_Disabled(t *testing.T) {
	c := NewLeaderboardCache(nil, 30*time.Second)
	require.NoError(t, c.Set(context.Background(), 7, 7, types.Leaderboard{}))
	_, found, err := c.Get(context.Background(), 7, 7)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAttemptLimiter(t *testing.T) {
	mr, rdb := setupRedis(t)
	limiter := NewAttemptLimiter(rdb, "login", 3, 15*time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, _, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, retry, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 15*time.Minute, retry)

	other, _, err := limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other)

	require.NoError(t, limiter.Reset(ctx, "10.0.0.1"))
	ok, _, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(16 * time.Minute)
	assert.False(t, mr.Exists("rl:login:10.0.0.2"))
}

func TestAttemptLimiter_FailsOpen(t *testing.T) {
	mr, rdb := setupRedis(t)
	limiter := NewAttemptLimiter(rdb, "login", 1, time.Minute)
	mr.Close()

	ok, _, err := limiter.Allow(context.Background(), "10.0.0.1")
	assert.Error(t, err)
	assert.True(t, ok)

	var disabled *AttemptLimiter
	ok, _, err = disabled.Allow(context.Background(), "x")
	assert.NoError(t, err)
	assert.True(t, ok)
}
