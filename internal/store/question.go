package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/unisoruyor/apiserver/types"
)

const questionColumns = `id, title, content, author_id, author_username, author_university, author_faculty,
		author_department, category, view_count, answer_count, like_count, created_at, updated_at`

// QuestionRepository handles persistence for questions.
type QuestionRepository struct {
	db *sql.DB
}

func NewQuestionRepository(db *sql.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func scanQuestion(row rowScanner) (types.Question, error) {
	var question types.Question
	err := row.Scan(
		&question.ID,
		&question.Title,
		&question.Content,
		&question.AuthorID,
		&question.AuthorUsername,
		&question.AuthorUniversity,
		&question.AuthorFaculty,
		&question.AuthorDepartment,
		&question.Category,
		&question.ViewCount,
		&question.AnswerCount,
		&question.LikeCount,
		&question.CreatedAt,
		&question.UpdatedAt,
	)
	return question, err
}

func buildQuestionFilter(filter types.QuestionFilter) (string, []any) {
	var clauses []string
	var args []any

	if category := strings.TrimSpace(filter.Category); category != "" {
		args = append(args, category)
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, search)
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(search_vector @@ plainto_tsquery('simple', $%d) OR title ILIKE '%%' || $%d || '%%')", n, n))
	}
	if filter.AuthorID > 0 {
		args = append(args, filter.AuthorID)
		clauses = append(clauses, fmt.Sprintf("author_id = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// List returns a newest-first window of questions matching filter and the total match count.
func (r *QuestionRepository) List(ctx context.Context, filter types.QuestionFilter, offset, limit int) ([]types.Question, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	where, args := buildQuestionFilter(filter)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM questions`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(`SELECT %s FROM questions%s ORDER BY created_at DESC, id DESC OFFSET $%d LIMIT $%d`,
		questionColumns, where, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, listQuery, append(args, offset, limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	questions := make([]types.Question, 0, limit)
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, 0, err
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return questions, total, nil
}

func (r *QuestionRepository) Get(ctx context.Context, id int) (types.Question, error) {
	question, err := scanQuestion(r.db.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Question{}, ErrNotFound
		}
		return types.Question{}, err
	}
	return question, nil
}

// View increments the view counter and returns the updated question.
func (r *QuestionRepository) View(ctx context.Context, id int) (types.Question, error) {
	const query = `
		UPDATE questions
		SET view_count = view_count + 1
		WHERE id = $1
		RETURNING ` + questionColumns
	question, err := scanQuestion(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Question{}, ErrNotFound
		}
		return types.Question{}, err
	}
	return question, nil
}

func (r *QuestionRepository) Create(ctx context.Context, question types.Question) (types.Question, error) {
	const query = `
		INSERT INTO questions (title, content, author_id, author_username, author_university,
			author_faculty, author_department, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, view_count, answer_count, like_count, created_at, updated_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		question.Title,
		question.Content,
		question.AuthorID,
		question.AuthorUsername,
		question.AuthorUniversity,
		question.AuthorFaculty,
		question.AuthorDepartment,
		question.Category,
	).Scan(
		&question.ID,
		&question.ViewCount,
		&question.AnswerCount,
		&question.LikeCount,
		&question.CreatedAt,
		&question.UpdatedAt,
	); err != nil {
		return types.Question{}, translateError(err)
	}
	return question, nil
}

// Update rewrites title and content; counters and author fields are untouched.
func (r *QuestionRepository) Update(ctx context.Context, question types.Question) (types.Question, error) {
	const query = `
		UPDATE questions
		SET title = $1, content = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + questionColumns
	updated, err := scanQuestion(r.db.QueryRowContext(ctx, query, question.Title, question.Content, question.ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Question{}, ErrNotFound
		}
		return types.Question{}, err
	}
	return updated, nil
}

func (r *QuestionRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
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
