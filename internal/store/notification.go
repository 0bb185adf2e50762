package store

import (
	"context"
	"database/sql"

	"github.com/unisoruyor/apiserver/types"
)

const notificationColumns = `id, user_id, type, title, message, related_question_id, related_answer_id,
		from_user_id, from_username, is_read, created_at`

// NotificationRepository handles persistence for notifications.
type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n types.Notification) (types.Notification, error) {
	const query = `
		INSERT INTO notifications (user_id, type, title, message, related_question_id, related_answer_id,
			from_user_id, from_username)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, is_read, created_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		n.UserID,
		string(n.Type),
		n.Title,
		n.Message,
		n.RelatedQuestionID,
		n.RelatedAnswerID,
		n.FromUserID,
		n.FromUsername,
	).Scan(&n.ID, &n.IsRead, &n.CreatedAt); err != nil {
		return types.Notification{}, translateError(err)
	}
	return n, nil
}

// ListByUser returns the user's latest notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int, unreadOnly bool, limit int) ([]types.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]types.Notification, 0)
	for rows.Next() {
		var n types.Notification
		var kind string
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&kind,
			&n.Title,
			&n.Message,
			&n.RelatedQuestionID,
			&n.RelatedAnswerID,
			&n.FromUserID,
			&n.FromUsername,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		n.Type = types.NotificationType(kind)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead flags one notification as read. Notifications owned by
// another user are reported as ErrNotFound.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
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

// MarkAllRead flags every unread notification of the user and returns how many changed.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int) (int, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	return int(affected), err
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID).Scan(&count)
	return count, err
}
