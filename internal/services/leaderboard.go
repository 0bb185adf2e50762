package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/unisoruyor/apiserver/types"
)

// LeaderboardRepository aggregates posting activity.
type LeaderboardRepository interface {
	Top(ctx context.Context, since time.Time, limit int) ([]types.LeaderboardEntry, error)
}

// LeaderboardCache stores computed boards. Implementations may be disabled.
type LeaderboardCache interface {
	Get(ctx context.Context, days, size int) (types.Leaderboard, bool, error)
	Set(ctx context.Context, days, size int, board types.Leaderboard) error
}

// LeaderboardService ranks users by posts in a trailing window.
type LeaderboardService struct {
	repo   LeaderboardRepository
	cache  LeaderboardCache
	window time.Duration
	size   int
	now    func() time.Time
}

func NewLeaderboardService(repo LeaderboardRepository, cache LeaderboardCache, window time.Duration, size int, now func() time.Time) *LeaderboardService {
	if now == nil {
		now = time.Now
	}
	return &LeaderboardService{repo: repo, cache: cache, window: window, size: size, now: now}
}

// Top returns the current board, served from cache when fresh.
func (s *LeaderboardService) Top(ctx context.Context) (types.Leaderboard, error) {
	days := int(s.window / (24 * time.Hour))

	if s.cache != nil {
		board, ok, err := s.cache.Get(ctx, days, s.size)
		if err != nil {
			slog.WarnContext(ctx, "leaderboard cache read failed", "error", err)
		} else if ok {
			return board, nil
		}
	}

	now := s.now().UTC()
	entries, err := s.repo.Top(ctx, now.Add(-s.window), s.size)
	if err != nil {
		return types.Leaderboard{}, err
	}
	if entries == nil {
		entries = []types.LeaderboardEntry{}
	}

	board := types.Leaderboard{Entries: entries, WindowDays: days, GeneratedAt: now}
	if s.cache != nil {
		if err := s.cache.Set(ctx, days, s.size, board); err != nil {
			slog.WarnContext(ctx, "leaderboard cache write failed", "error", err)
		}
	}
	return board, nil
}
