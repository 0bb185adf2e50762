package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/unisoruyor/apiserver/internal/observability"
	"github.com/unisoruyor/apiserver/internal/store"
	"github.com/unisoruyor/apiserver/types"
)

const (
	notificationListLimit   = 50
	msgNotificationNotFound = "Bildirim bulunamadı"
)

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n types.Notification) (types.Notification, error)
	ListByUser(ctx context.Context, userID int, unreadOnly bool, limit int) ([]types.Notification, error)
	MarkRead(ctx context.Context, id, userID int) error
	MarkAllRead(ctx context.Context, userID int) (int, error)
	CountUnread(ctx context.Context, userID int) (int, error)
}

// EventPublisher delivers notification events to live subscribers.
type EventPublisher interface {
	PublishNotification(ctx context.Context, event types.NotificationEvent) error
}

// NotificationService stores notifications and serves a user's inbox.
type NotificationService struct {
	repo      NotificationRepository
	publisher EventPublisher
}

// NewNotificationService builds the service. publisher may be nil.
func NewNotificationService(repo NotificationRepository, publisher EventPublisher) *NotificationService {
	return &NotificationService{repo: repo, publisher: publisher}
}

// Notify stores a notification and publishes its event.
// Failures are logged and never returned to the caller.
func (s *NotificationService) Notify(ctx context.Context, n types.Notification) {
	created, err := s.repo.Create(ctx, n)
	if err != nil {
		observability.NotificationsTotal.WithLabelValues(string(n.Type), "error").Inc()
		slog.WarnContext(ctx, "failed to store notification", "recipient_id", n.UserID, "type", n.Type, "error", err)
		return
	}
	observability.NotificationsTotal.WithLabelValues(string(n.Type), "stored").Inc()

	if s.publisher == nil {
		return
	}
	event := types.NotificationEvent{
		NotificationID: created.ID,
		UserID:         created.UserID,
		Type:           created.Type,
		Title:          created.Title,
		Message:        created.Message,
		CreatedAt:      created.CreatedAt,
	}
	if err := s.publisher.PublishNotification(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish notification event", "notification_id", created.ID, "error", err)
	}
}

func (s *NotificationService) List(ctx context.Context, userID int, unreadOnly bool) ([]types.Notification, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly, notificationListLimit)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID int) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id int) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound(msgNotificationNotFound)
		}
		return err
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int) (int, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func intPtr(v int) *int {
	return &v
}
