package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/unisoruyor/apiserver/types"
)

const userColumns = `id, username, email, password_hash, university, faculty, department,
		is_admin, is_suspended, suspend_until, COALESCE(suspend_reason, ''), is_muted, mute_until,
		last_question_at, last_answer_at, created_at, updated_at`

const userSummaryColumns = `u.id, u.username, u.email, u.password_hash, u.university, u.faculty, u.department,
		u.is_admin, u.is_suspended, u.suspend_until, COALESCE(u.suspend_reason, ''), u.is_muted, u.mute_until,
		u.last_question_at, u.last_answer_at, u.created_at, u.updated_at,
		(SELECT COUNT(1) FROM questions q WHERE q.author_id = u.id) AS question_count,
		(SELECT COUNT(1) FROM answers a WHERE a.author_id = u.id) AS answer_count`

type rowScanner interface {
	Scan(dest ...any) error
}

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row rowScanner, extra ...any) (types.User, error) {
	var user types.User
	dest := []any{
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.University,
		&user.Faculty,
		&user.Department,
		&user.IsAdmin,
		&user.IsSuspended,
		&user.SuspendUntil,
		&user.SuspendReason,
		&user.IsMuted,
		&user.MuteUntil,
		&user.LastQuestionAt,
		&user.LastAnswerAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, args ...any) (types.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

// GetByLogin resolves an email or a username, preferring an email match.
func (r *UserRepository) GetByLogin(ctx context.Context, identifier string) (types.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+`
		FROM users
		WHERE lower(email) = lower($1) OR username = $1
		ORDER BY (lower(email) = lower($1)) DESC
		LIMIT 1`, identifier)
}

// ListByUsernames returns the users whose usernames are in names.
func (r *UserRepository) ListByUsernames(ctx context.Context, names []string) ([]types.User, error) {
	if len(names) == 0 {
		return []types.User{}, nil
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ANY($1)`, pq.Array(names))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]types.User, 0, len(names))
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	const query = `
		INSERT INTO users (username, email, password_hash, university, faculty, department, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.University,
		user.Faculty,
		user.Department,
		user.IsAdmin,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return types.User{}, translateError(err)
	}
	return user, nil
}

func (r *UserRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetAdmin(ctx context.Context, id int, isAdmin bool) error {
	return r.exec(ctx, `UPDATE users SET is_admin = $2, updated_at = NOW() WHERE id = $1`, id, isAdmin)
}

func (r *UserRepository) Suspend(ctx context.Context, id int, until time.Time, reason string) error {
	return r.exec(ctx, `
		UPDATE users
		SET is_suspended = TRUE, suspend_until = $2, suspend_reason = $3, updated_at = NOW()
		WHERE id = $1`, id, until, reason)
}

func (r *UserRepository) ClearSuspension(ctx context.Context, id int) error {
	return r.exec(ctx, `
		UPDATE users
		SET is_suspended = FALSE, suspend_until = NULL, suspend_reason = NULL, updated_at = NOW()
		WHERE id = $1`, id)
}

func (r *UserRepository) Mute(ctx context.Context, id int, until time.Time) error {
	return r.exec(ctx, `
		UPDATE users
		SET is_muted = TRUE, mute_until = $2, updated_at = NOW()
		WHERE id = $1`, id, until)
}

func (r *UserRepository) ClearMute(ctx context.Context, id int) error {
	return r.exec(ctx, `
		UPDATE users
		SET is_muted = FALSE, mute_until = NULL, updated_at = NOW()
		WHERE id = $1`, id)
}

const (
	reserveQuestionQuery = `
		UPDATE users
		SET last_question_at = $2
		WHERE id = $1
		  AND (GREATEST(last_question_at, last_answer_at) IS NULL
		       OR GREATEST(last_question_at, last_answer_at) <= $3)`
	reserveAnswerQuery = `
		UPDATE users
		SET last_answer_at = $2
		WHERE id = $1
		  AND (GREATEST(last_question_at, last_answer_at) IS NULL
		       OR GREATEST(last_question_at, last_answer_at) <= $3)`
)

// ReservePost stamps the post timestamp of the given kind when the user's
// latest post of either kind is at least cooldown old. It reports false
// without writing anything otherwise.
func (r *UserRepository) ReservePost(ctx context.Context, id int, kind types.PostKind, now time.Time, cooldown time.Duration) (bool, error) {
	var query string
	switch kind {
	case types.PostQuestion:
		query = reserveQuestionQuery
	case types.PostAnswer:
		query = reserveAnswerQuery
	default:
		return false, fmt.Errorf("unknown post kind %q", kind)
	}

	result, err := r.db.ExecContext(ctx, query, id, now, now.Add(-cooldown))
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int) error {
	return r.exec(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (r *UserRepository) listSummaries(ctx context.Context, query string, args ...any) ([]types.UserSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]types.UserSummary, 0)
	for rows.Next() {
		var summary types.UserSummary
		user, err := scanUser(rows, &summary.QuestionCount, &summary.AnswerCount)
		if err != nil {
			return nil, err
		}
		summary.User = user
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// ListAdmins returns every admin with activity totals, newest first.
func (r *UserRepository) ListAdmins(ctx context.Context) ([]types.UserSummary, error) {
	return r.listSummaries(ctx, `SELECT `+userSummaryColumns+`
		FROM users u
		WHERE u.is_admin = TRUE
		ORDER BY u.created_at DESC`)
}

// Search matches username, email or university case-insensitively.
func (r *UserRepository) Search(ctx context.Context, term string, limit int) ([]types.UserSummary, error) {
	return r.listSummaries(ctx, `SELECT `+userSummaryColumns+`
		FROM users u
		WHERE u.username ILIKE $1 OR u.email ILIKE $1 OR u.university ILIKE $1
		ORDER BY u.is_admin DESC, u.created_at DESC
		LIMIT $2`, "%"+term+"%", limit)
}
