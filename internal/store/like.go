package store

import (
	"context"
	"database/sql"
	"errors"
)

// LikeRepository handles question likes. The like counter on questions
// is maintained by a trigger on question_likes.
type LikeRepository struct {
	db *sql.DB
}

func NewLikeRepository(db *sql.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Like records a like and reports whether a new row was inserted.
func (r *LikeRepository) Like(ctx context.Context, questionID, userID int) (bool, error) {
	const query = `
		INSERT INTO question_likes (question_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (question_id, user_id) DO NOTHING`
	result, err := r.db.ExecContext(ctx, query, questionID, userID)
	if err != nil {
		return false, translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Unlike removes a like and reports whether one existed.
func (r *LikeRepository) Unlike(ctx context.Context, questionID, userID int) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM question_likes WHERE question_id = $1 AND user_id = $2`, questionID, userID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *LikeRepository) HasLiked(ctx context.Context, questionID, userID int) (bool, error) {
	var liked bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM question_likes WHERE question_id = $1 AND user_id = $2)`,
		questionID, userID,
	).Scan(&liked)
	return liked, err
}

func (r *LikeRepository) Count(ctx context.Context, questionID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT like_count FROM questions WHERE id = $1`, questionID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return count, err
}
