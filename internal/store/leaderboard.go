package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/unisoruyor/apiserver/types"
)

// LeaderboardRepository aggregates posting activity per user.
type LeaderboardRepository struct {
	db *sql.DB
}

func NewLeaderboardRepository(db *sql.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

// Top counts questions and answers created at or after since, ranks users by
// the combined count then username, and returns at most limit rows.
func (r *LeaderboardRepository) Top(ctx context.Context, since time.Time, limit int) ([]types.LeaderboardEntry, error) {
	const query = `
		WITH activity AS (
			SELECT author_id, COUNT(1) AS question_count, 0 AS answer_count
			FROM questions
			WHERE created_at >= $1
			GROUP BY author_id
			UNION ALL
			SELECT author_id, 0 AS question_count, COUNT(1) AS answer_count
			FROM answers
			WHERE created_at >= $1
			GROUP BY author_id
		)
		SELECT u.id, u.username, u.university,
			SUM(a.question_count)::int AS question_count,
			SUM(a.answer_count)::int AS answer_count,
			SUM(a.question_count + a.answer_count)::int AS total
		FROM activity a
		JOIN users u ON u.id = a.author_id
		GROUP BY u.id, u.username, u.university
		ORDER BY total DESC, u.username ASC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]types.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var entry types.LeaderboardEntry
		if err := rows.Scan(
			&entry.UserID,
			&entry.Username,
			&entry.University,
			&entry.QuestionCount,
			&entry.AnswerCount,
			&entry.Total,
		); err != nil {
			return nil, err
		}
		entry.Rank = len(entries) + 1
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
