package types

import "time"

// LeaderboardEntry is one ranked row of the weekly activity board.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	UserID        int    `json:"user_id"`
	Username      string `json:"username"`
	University    string `json:"university"`
	QuestionCount int    `json:"question_count"`
	AnswerCount   int    `json:"answer_count"`
	Total         int    `json:"total"`
}

// Leaderboard is the payload served by the leaderboard endpoint.
type Leaderboard struct {
	Entries     []LeaderboardEntry `json:"entries"`
	WindowDays  int                `json:"window_days"`
	GeneratedAt time.Time          `json:"generated_at"`
}
