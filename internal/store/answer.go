package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/unisoruyor/apiserver/types"
)

const answerColumns = `id, question_id, content, author_id, author_username, parent_answer_id,
		mentioned_users, reply_count, created_at, updated_at`

// AnswerRepository handles persistence for answers and replies.
type AnswerRepository struct {
	db *sql.DB
}

func NewAnswerRepository(db *sql.DB) *AnswerRepository {
	return &AnswerRepository{db: db}
}

func scanAnswer(row rowScanner) (types.Answer, error) {
	var answer types.Answer
	var mentioned pq.StringArray
	err := row.Scan(
		&answer.ID,
		&answer.QuestionID,
		&answer.Content,
		&answer.AuthorID,
		&answer.AuthorUsername,
		&answer.ParentAnswerID,
		&mentioned,
		&answer.ReplyCount,
		&answer.CreatedAt,
		&answer.UpdatedAt,
	)
	if err != nil {
		return types.Answer{}, err
	}
	answer.MentionedUsers = []string(mentioned)
	if answer.MentionedUsers == nil {
		answer.MentionedUsers = []string{}
	}
	return answer, nil
}

func (r *AnswerRepository) list(ctx context.Context, query string, args ...any) ([]types.Answer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := make([]types.Answer, 0)
	for rows.Next() {
		answer, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		answers = append(answers, answer)
	}
	return answers, rows.Err()
}

func (r *AnswerRepository) Get(ctx context.Context, id int) (types.Answer, error) {
	answer, err := scanAnswer(r.db.QueryRowContext(ctx, `SELECT `+answerColumns+` FROM answers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Answer{}, ErrNotFound
		}
		return types.Answer{}, err
	}
	return answer, nil
}

// ListByQuestion returns every answer and reply on a question, oldest first.
func (r *AnswerRepository) ListByQuestion(ctx context.Context, questionID int) ([]types.Answer, error) {
	return r.list(ctx, `SELECT `+answerColumns+`
		FROM answers
		WHERE question_id = $1
		ORDER BY created_at ASC, id ASC`, questionID)
}

// ListReplies returns the direct replies to an answer, oldest first.
func (r *AnswerRepository) ListReplies(ctx context.Context, parentID int) ([]types.Answer, error) {
	return r.list(ctx, `SELECT `+answerColumns+`
		FROM answers
		WHERE parent_answer_id = $1
		ORDER BY created_at ASC, id ASC`, parentID)
}

// ListRecentByAuthor returns the author's latest answers, newest first.
func (r *AnswerRepository) ListRecentByAuthor(ctx context.Context, authorID, limit int) ([]types.Answer, error) {
	return r.list(ctx, `SELECT `+answerColumns+`
		FROM answers
		WHERE author_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, authorID, limit)
}

func (r *AnswerRepository) CountByAuthor(ctx context.Context, authorID int) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM answers WHERE author_id = $1`, authorID).Scan(&total)
	return total, err
}

// Create inserts an answer. A parent on a different question violates the
// composite foreign key and is reported as ErrNotFound.
func (r *AnswerRepository) Create(ctx context.Context, answer types.Answer) (types.Answer, error) {
	if answer.MentionedUsers == nil {
		answer.MentionedUsers = []string{}
	}

	const query = `
		INSERT INTO answers (question_id, content, author_id, author_username, parent_answer_id, mentioned_users)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, reply_count, created_at, updated_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		answer.QuestionID,
		answer.Content,
		answer.AuthorID,
		answer.AuthorUsername,
		answer.ParentAnswerID,
		pq.Array(answer.MentionedUsers),
	).Scan(&answer.ID, &answer.ReplyCount, &answer.CreatedAt, &answer.UpdatedAt); err != nil {
		return types.Answer{}, translateError(err)
	}
	return answer, nil
}

func (r *AnswerRepository) Update(ctx context.Context, answer types.Answer) (types.Answer, error) {
	if answer.MentionedUsers == nil {
		answer.MentionedUsers = []string{}
	}

	const query = `
		UPDATE answers
		SET content = $1, mentioned_users = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + answerColumns
	updated, err := scanAnswer(r.db.QueryRowContext(ctx, query, answer.Content, pq.Array(answer.MentionedUsers), answer.ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Answer{}, ErrNotFound
		}
		return types.Answer{}, err
	}
	return updated, nil
}

// Delete removes an answer; replies to it are removed by cascade.
func (r *AnswerRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM answers WHERE id = $1`, id)
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
