package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/unisoruyor/apiserver/internal/services"
	"github.com/unisoruyor/apiserver/types"
)

// Moderator is the moderation service surface used by the admin endpoints.
type Moderator interface {
	MakeAdmin(ctx context.Context, admin types.User, id int) (services.ModerationResult, error)
	Suspend(ctx context.Context, admin types.User, id int, in services.SuspendInput) (services.ModerationResult, error)
	Unsuspend(ctx context.Context, admin types.User, id int) (services.ModerationResult, error)
	Mute(ctx context.Context, admin types.User, id int, in services.MuteInput) (services.ModerationResult, error)
	Warn(ctx context.Context, admin types.User, id int, in services.WarnInput) (services.ModerationResult, error)
	DeleteUser(ctx context.Context, admin types.User, id int) (services.ModerationResult, error)
	Ban(ctx context.Context, admin types.User, id int) (services.ModerationResult, error)
	DeleteQuestion(ctx context.Context, admin types.User, id int) (services.ModerationResult, error)
	DeleteAnswer(ctx context.Context, admin types.User, id int) (services.ModerationResult, error)
	ListAdmins(ctx context.Context) ([]types.UserSummary, error)
	Search(ctx context.Context, term string) ([]types.UserSummary, error)
}

// AdminHandler exposes moderation actions to administrators.
type AdminHandler struct {
	moderator Moderator
}

func NewAdminHandler(moderator Moderator) *AdminHandler {
	return &AdminHandler{moderator: moderator}
}

// AdminRouter registers the /admin routes behind auth and the admin check.
func AdminRouter(r chi.Router, moderator Moderator, authMiddleware func(http.Handler) http.Handler) {
	handler := NewAdminHandler(moderator)

	r.Use(authMiddleware, RequireAdmin)
	r.Get("/users", handler.ListAdmins)
	r.Get("/search-users", handler.SearchUsers)
	r.Post("/make-admin/{userID}", handler.targetAction(moderator.MakeAdmin))
	r.Post("/unsuspend-user/{userID}", handler.targetAction(moderator.Unsuspend))
	r.Delete("/delete-user/{userID}", handler.targetAction(moderator.DeleteUser))
	r.Post("/ban-user/{userID}", handler.targetAction(moderator.Ban))
	r.Post("/suspend-user/{userID}", handler.SuspendUser)
	r.Post("/mute-user/{userID}", handler.MuteUser)
	r.Post("/warn-user/{userID}", handler.WarnUser)
	r.Delete("/delete-question/{questionID}", handler.DeleteQuestion)
	r.Delete("/delete-answer/{answerID}", handler.DeleteAnswer)
}

type moderationAction func(ctx context.Context, admin types.User, id int) (services.ModerationResult, error)

// targetAction adapts an action that needs only the target user id.
func (h *AdminHandler) targetAction(action moderationAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.run(w, r, "userID", action)
	}
}

func (h *AdminHandler) run(w http.ResponseWriter, r *http.Request, param string, action moderationAction) {
	admin, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, param)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Geçersiz kimlik")
		return
	}

	result, err := action(r.Context(), admin, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// withBody decodes the request into T before running the action.
func withBody[T any](r *http.Request, fn func(ctx context.Context, admin types.User, id int, in T) (services.ModerationResult, error)) moderationAction {
	var in T
	if err := decodeJSON(r, &in); err != nil {
		return func(context.Context, types.User, int) (services.ModerationResult, error) {
			return services.ModerationResult{}, services.ErrValidation(msgInvalidRequest)
		}
	}
	return func(ctx context.Context, admin types.User, id int) (services.ModerationResult, error) {
		return fn(ctx, admin, id, in)
	}
}

func (h *AdminHandler) SuspendUser(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "userID", withBody(r, h.moderator.Suspend))
}

func (h *AdminHandler) MuteUser(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "userID", withBody(r, h.moderator.Mute))
}

func (h *AdminHandler) WarnUser(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "userID", withBody(r, h.moderator.Warn))
}

func (h *AdminHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "questionID", h.moderator.DeleteQuestion)
}

func (h *AdminHandler) DeleteAnswer(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "answerID", h.moderator.DeleteAnswer)
}

func (h *AdminHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.moderator.ListAdmins(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, admins)
}

func (h *AdminHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.moderator.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
