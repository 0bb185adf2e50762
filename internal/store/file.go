package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/unisoruyor/apiserver/types"
)

const fileColumns = `id, filename, original_filename, file_path, file_type, file_size, uploaded_by, uploaded_at`

// FileRepository handles uploaded file metadata and attachment links.
type FileRepository struct {
	db *sql.DB
}

func NewFileRepository(db *sql.DB) *FileRepository {
	return &FileRepository{db: db}
}

func scanFile(row rowScanner) (types.FileUpload, error) {
	var file types.FileUpload
	err := row.Scan(
		&file.ID,
		&file.Filename,
		&file.OriginalFilename,
		&file.FilePath,
		&file.FileType,
		&file.FileSize,
		&file.UploadedBy,
		&file.UploadedAt,
	)
	return file, err
}

func (r *FileRepository) Create(ctx context.Context, file types.FileUpload) (types.FileUpload, error) {
	const query = `
		INSERT INTO file_uploads (id, filename, original_filename, file_path, file_type, file_size, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING uploaded_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		file.ID,
		file.Filename,
		file.OriginalFilename,
		file.FilePath,
		file.FileType,
		file.FileSize,
		file.UploadedBy,
	).Scan(&file.UploadedAt); err != nil {
		return types.FileUpload{}, translateError(err)
	}
	return file, nil
}

func (r *FileRepository) Get(ctx context.Context, id string) (types.FileUpload, error) {
	file, err := scanFile(r.db.QueryRowContext(ctx, `SELECT `+fileColumns+` FROM file_uploads WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.FileUpload{}, ErrNotFound
		}
		return types.FileUpload{}, err
	}
	return file, nil
}

func (r *FileRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM file_uploads WHERE id = $1`, id)
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

func (r *FileRepository) AttachToQuestion(ctx context.Context, questionID int, fileIDs []string) error {
	return r.attach(ctx, `
		INSERT INTO question_attachments (question_id, file_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING`, questionID, fileIDs)
}

func (r *FileRepository) AttachToAnswer(ctx context.Context, answerID int, fileIDs []string) error {
	return r.attach(ctx, `
		INSERT INTO answer_attachments (answer_id, file_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING`, answerID, fileIDs)
}

func (r *FileRepository) attach(ctx context.Context, query string, ownerID int, fileIDs []string) error {
	if len(fileIDs) == 0 {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, query, ownerID, pq.Array(fileIDs)); err != nil {
		return translateError(err)
	}
	return nil
}

func (r *FileRepository) ListByQuestion(ctx context.Context, questionID int) ([]types.FileUpload, error) {
	return r.list(ctx, `SELECT f.id, f.filename, f.original_filename, f.file_path, f.file_type, f.file_size, f.uploaded_by, f.uploaded_at
		FROM file_uploads f
		JOIN question_attachments qa ON qa.file_id = f.id
		WHERE qa.question_id = $1
		ORDER BY f.uploaded_at`, questionID)
}

// ListByAnswers returns attachments for several answers keyed by answer id.
func (r *FileRepository) ListByAnswers(ctx context.Context, answerIDs []int) (map[int][]types.FileUpload, error) {
	result := make(map[int][]types.FileUpload)
	if len(answerIDs) == 0 {
		return result, nil
	}

	ids := make([]int64, len(answerIDs))
	for i, id := range answerIDs {
		ids[i] = int64(id)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT aa.answer_id, f.id, f.filename, f.original_filename, f.file_path, f.file_type, f.file_size, f.uploaded_by, f.uploaded_at
		FROM file_uploads f
		JOIN answer_attachments aa ON aa.file_id = f.id
		WHERE aa.answer_id = ANY($1)
		ORDER BY f.uploaded_at`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var answerID int
		var file types.FileUpload
		if err := rows.Scan(
			&answerID,
			&file.ID,
			&file.Filename,
			&file.OriginalFilename,
			&file.FilePath,
			&file.FileType,
			&file.FileSize,
			&file.UploadedBy,
			&file.UploadedAt,
		); err != nil {
			return nil, err
		}
		result[answerID] = append(result[answerID], file)
	}
	return result, rows.Err()
}

func (r *FileRepository) list(ctx context.Context, query string, args ...any) ([]types.FileUpload, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := make([]types.FileUpload, 0)
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}
