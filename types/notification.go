package types

import "time"

// NotificationType classifies what triggered a notification.
type NotificationType string

const (
	NotificationAnswer    NotificationType = "answer"
	NotificationReply     NotificationType = "reply"
	NotificationMention   NotificationType = "mention"
	NotificationLike      NotificationType = "like"
	NotificationWarning   NotificationType = "warning"
	NotificationMute      NotificationType = "mute"
	NotificationSuspend   NotificationType = "suspend"
	NotificationUnsuspend NotificationType = "unsuspend"
)

// Notification is an event addressed to a single user.
type Notification struct {
	ID                int              `json:"id" db:"id"`
	UserID            int              `json:"user_id" db:"user_id"`
	Type              NotificationType `json:"type" db:"type"`
	Title             string           `json:"title" db:"title"`
	Message           string           `json:"message" db:"message"`
	RelatedQuestionID *int             `json:"related_question_id,omitempty" db:"related_question_id"`
	RelatedAnswerID   *int             `json:"related_answer_id,omitempty" db:"related_answer_id"`
	FromUserID        *int             `json:"from_user_id,omitempty" db:"from_user_id"`
	FromUsername      string           `json:"from_username,omitempty" db:"from_username"`
	IsRead            bool             `json:"is_read" db:"is_read"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
}

// NotificationEvent is published to the message queue after a
// notification row is stored, for clients that want live updates.
type NotificationEvent struct {
	NotificationID int              `json:"notification_id"`
	UserID         int              `json:"user_id"`
	Type           NotificationType `json:"type"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	CreatedAt      time.Time        `json:"created_at"`
}
