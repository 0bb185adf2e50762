package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unisoruyor/apiserver/internal/services"
	"github.com/unisoruyor/apiserver/types"
)

type stubNotifications struct {
	items []types.Notification
}

func (s *stubNotifications) List(_ context.Context, userID int, unreadOnly bool) ([]types.Notification, error) {
	out := []types.Notification{}
	for _, n := range s.items {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *stubNotifications) UnreadCount(ctx context.Context, userID int) (int, error) {
	unread, _ := s.List(ctx, userID, true)
	return len(unread), nil
}

func (s *stubNotifications) MarkRead(_ context.Context, userID, id int) error {
	for i, n := range s.items {
		if n.ID == id && n.UserID == userID {
			s.items[i].IsRead = true
			return nil
		}
	}
	return services.ErrNotFound("Bildirim bulunamadı")
}

func (s *stubNotifications) MarkAllRead(_ context.Context, userID int) (int, error) {
	count := 0
	for i, n := range s.items {
		if n.UserID == userID && !n.IsRead {
			s.items[i].IsRead = true
			count++
		}
	}
	return count, nil
}

func TestNotificationHandler(t *testing.T) {
	inbox := &stubNotifications{items: []types.Notification{
		{ID: 1, UserID: 1, Type: types.NotificationAnswer, Title: "Sorunuza yeni cevap"},
		{ID: 2, UserID: 1, Type: types.NotificationMention, IsRead: true},
		{ID: 3, UserID: 1, Type: types.NotificationLike},
		{ID: 4, UserID: 2, Type: types.NotificationReply},
	}}
	auth, _ := newAuth(testUser(1, "ayse"))
	router := mount("/notifications", func(r chi.Router) { NotificationRouter(r, inbox, auth.RequireAuth) })
	token := tokenFor(t, 1)

	rr := serve(t, router, request{method: http.MethodGet, path: "/notifications"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = serve(t, router, request{method: http.MethodGet, path: "/notifications", token: token})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[[]types.Notification](t, rr), 3)

	rr = serve(t, router, request{method: http.MethodGet, path: "/notifications?unread=true", token: token})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[[]types.Notification](t, rr), 2)

	rr = serve(t, router, request{method: http.MethodPut, path: "/notifications/4/read", token: token})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Bildirim bulunamadı", errorBody(t, rr).Error)

	rr = serve(t, router, request{method: http.MethodPut, path: "/notifications/1/read", token: token})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serve(t, router, request{method: http.MethodGet, path: "/notifications/unread-count", token: token})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decodeBody[UnreadCountResponse](t, rr).UnreadCount)

	rr = serve(t, router, request{method: http.MethodPut, path: "/notifications/read-all", token: token})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decodeBody[MarkAllReadResponse](t, rr).Updated)
	assert.False(t, inbox.items[3].IsRead, "other users' notifications are untouched")
}
