package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/unisoruyor/apiserver/internal/services"
	"github.com/unisoruyor/apiserver/types"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100

	msgInvalidRequest = "Geçersiz istek"
	msgInternal       = "Sunucu hatası"
)

type contextKey string

const contextSessionKey contextKey = "session"

func withSession(ctx context.Context, user types.User) context.Context {
	return context.WithValue(ctx, contextSessionKey, user)
}

// sessionUser returns the user resolved by the session middleware.
func sessionUser(ctx context.Context) (types.User, bool) {
	user, ok := ctx.Value(contextSessionKey).(types.User)
	return user, ok && user.ID > 0
}

// ErrorResponse is the error payload. Fields carries per-field validation
// messages keyed by JSON name.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// MessageResponse is the payload of actions that only report a result.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func statusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation, services.KindConflict:
		return http.StatusBadRequest
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case services.KindRateLimited:
		return http.StatusTooManyRequests
	case services.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError renders a service failure. Anything that is not a
// *services.Error is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var serr *services.Error
	if !errors.As(err, &serr) {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	if serr.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(serr.RetryAfter.Seconds()))))
	}
	writeJSON(w, statusForKind(serr.Kind), ErrorResponse{Error: serr.Message, Fields: serr.Fields})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}

func parsePagination(r *http.Request) (page, limit int, err error) {
	page = defaultPage
	limit = defaultLimit

	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, errors.New("invalid page")
		}
	}

	rawLimit := strings.TrimSpace(r.URL.Query().Get("limit"))
	if rawLimit == "" {
		rawLimit = strings.TrimSpace(r.URL.Query().Get("per_page"))
	}
	if rawLimit != "" {
		limit, err = strconv.Atoi(rawLimit)
		if err != nil || limit < 1 {
			return 0, 0, errors.New("invalid limit")
		}
	}

	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit, nil
}

func parseID(r *http.Request, param string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, param))
	if err != nil || id < 1 {
		return 0, errors.New("invalid " + param)
	}
	return id, nil
}

// requireSession returns the session user or writes a 401.
func requireSession(w http.ResponseWriter, r *http.Request) (types.User, bool) {
	user, ok := sessionUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgLoginRequired)
		return types.User{}, false
	}
	return user, true
}
