package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/unisoruyor/apiserver/internal/services"
	"github.com/unisoruyor/apiserver/types"
)

const testSecret = "test-secret"

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// stubAccounts resolves tokens against a fixed set of users.
type stubAccounts struct {
	users        map[int]types.User
	register     func(ctx context.Context, in services.RegisterInput) (types.User, error)
	authenticate func(ctx context.Context, in services.LoginInput) (types.User, error)
	resolveErr   error
}

func (s *stubAccounts) Register(ctx context.Context, in services.RegisterInput) (types.User, error) {
	return s.register(ctx, in)
}

func (s *stubAccounts) Authenticate(ctx context.Context, in services.LoginInput) (types.User, error) {
	return s.authenticate(ctx, in)
}

func (s *stubAccounts) Resolve(_ context.Context, id int) (types.User, error) {
	if s.resolveErr != nil {
		return types.User{}, s.resolveErr
	}
	user, ok := s.users[id]
	if !ok {
		return types.User{}, services.ErrUnauthorized("Oturum geçersiz, lütfen tekrar giriş yapın")
	}
	return user, nil
}

func testUser(id int, username string) types.User {
	return types.User{
		ID:         id,
		Username:   username,
		Email:      username + "@example.com",
		University: "Boğaziçi Üniversitesi",
		Faculty:    "Mühendislik Fakültesi",
		Department: "Bilgisayar Mühendisliği",
		CreatedAt:  fixedNow,
	}
}

func testAdmin(id int, username string) types.User {
	user := testUser(id, username)
	user.IsAdmin = true
	return user
}

// newAuth returns an auth handler whose sessions resolve to users.
func newAuth(users ...types.User) (*AuthHandler, *stubAccounts) {
	accounts := &stubAccounts{users: map[int]types.User{}}
	for _, u := range users {
		accounts.users[u.ID] = u
	}
	return NewAuthHandler(accounts, nil, testSecret, time.Hour), accounts
}

func tokenFor(t *testing.T, id int) string {
	t.Helper()
	token, err := issueToken(id, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return token
}

type request struct {
	method      string
	path        string
	body        any
	token       string
	contentType string
	raw         io.Reader
}

func serve(t *testing.T, router http.Handler, req request) *httptest.ResponseRecorder {
	t.Helper()

	body := req.raw
	if body == nil && req.body != nil {
		payload, err := json.Marshal(req.body)
		require.NoError(t, err)
		body = bytes.NewReader(payload)
	}

	httpReq := httptest.NewRequest(req.method, req.path, body)
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	} else if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httpReq)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func errorBody(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	return decodeBody[ErrorResponse](t, rr)
}

func mount(pattern string, register func(r chi.Router)) *chi.Mux {
	router := chi.NewRouter()
	router.Route(pattern, register)
	return router
}

func stringsReader(s string) io.Reader {
	return bytes.NewReader([]byte(s))
}
