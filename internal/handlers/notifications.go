package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/unisoruyor/apiserver/types"
)

// Notifications is the notification service surface used by the HTTP layer.
type Notifications interface {
	List(ctx context.Context, userID int, unreadOnly bool) ([]types.Notification, error)
	UnreadCount(ctx context.Context, userID int) (int, error)
	MarkRead(ctx context.Context, userID, id int) error
	MarkAllRead(ctx context.Context, userID int) (int, error)
}

// NotificationHandler serves the signed-in user's inbox.
type NotificationHandler struct {
	notifications Notifications
}

func NewNotificationHandler(notifications Notifications) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// NotificationRouter registers notification routes. Every route requires auth.
func NotificationRouter(r chi.Router, notifications Notifications, authMiddleware func(http.Handler) http.Handler) {
	handler := NewNotificationHandler(notifications)

	r.Use(authMiddleware)
	r.Get("/", handler.ListNotifications)
	r.Get("/unread-count", handler.UnreadCount)
	r.Put("/read-all", handler.MarkAllRead)
	r.Put("/{notificationID}/read", handler.MarkRead)
}

func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	user, ok := requireSession(w, r)
	if !ok {
		return
	}
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))

	notifications, err := h.notifications.List(r.Context(), user.ID, unreadOnly)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	user, ok := requireSession(w, r)
	if !ok {
		return
	}

	count, err := h.notifications.UnreadCount(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UnreadCountResponse{UnreadCount: count})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "notificationID")
	if err != nil {
		writeError(w, http.StatusNotFound, "Bildirim bulunamadı")
		return
	}

	if err := h.notifications.MarkRead(r.Context(), user.ID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Bildirim okundu olarak işaretlendi"})
}

type MarkAllReadResponse struct {
	Message string `json:"message"`
	Updated int    `json:"updated"`
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user, ok := requireSession(w, r)
	if !ok {
		return
	}

	updated, err := h.notifications.MarkAllRead(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MarkAllReadResponse{Message: "Tüm bildirimler okundu olarak işaretlendi", Updated: updated})
}
