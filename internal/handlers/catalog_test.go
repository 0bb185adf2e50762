package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unisoruyor/apiserver/internal/services"
	"github.com/unisoruyor/apiserver/types"
)

type leaderboardFunc func(ctx context.Context) (types.Leaderboard, error)

func (f leaderboardFunc) Top(ctx context.Context) (types.Leaderboard, error) { return f(ctx) }

type profilesFunc func(ctx context.Context, id int) (types.PublicProfile, error)

func (f profilesFunc) Get(ctx context.Context, id int) (types.PublicProfile, error) { return f(ctx, id) }

func catalogRouter() *chi.Mux {
	router := chi.NewRouter()
	board := leaderboardFunc(func(context.Context) (types.Leaderboard, error) {
		return types.Leaderboard{
			Entries:     []types.LeaderboardEntry{{Rank: 1, UserID: 3, Username: "zeynep", Total: 6}},
			WindowDays:  7,
			GeneratedAt: fixedNow,
		}, nil
	})
	profiles := profilesFunc(func(_ context.Context, id int) (types.PublicProfile, error) {
		if id != 3 {
			return types.PublicProfile{}, services.ErrNotFound("Kullanıcı bulunamadı")
		}
		return types.PublicProfile{ID: 3, Username: "zeynep", QuestionCount: 2, RecentQuestions: []types.Question{}, RecentAnswers: []types.Answer{}}, nil
	})
	CatalogRouter(router, services.DefaultCatalog(), board, profiles)
	return router
}

func TestCatalogRouter(t *testing.T) {
	router := catalogRouter()

	rr := serve(t, router, request{method: http.MethodGet, path: "/universities"})
	require.Equal(t, http.StatusOK, rr.Code)
	universities := decodeBody[UniversitiesResponse](t, rr).Universities
	assert.NotEmpty(t, universities)
	assert.Contains(t, universities, "Boğaziçi Üniversitesi")

	rr = serve(t, router, request{method: http.MethodGet, path: "/faculties"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, decodeBody[FacultiesResponse](t, rr).Faculties)

	rr = serve(t, router, request{method: http.MethodGet, path: "/categories"})
	require.Equal(t, http.StatusOK, rr.Code)
	categories := decodeBody[map[string][]string](t, rr)
	assert.Contains(t, categories, "Dersler")
}

func TestCatalogRouter_LeaderboardAndProfiles(t *testing.T) {
	router := catalogRouter()

	rr := serve(t, router, request{method: http.MethodGet, path: "/leaderboard"})
	require.Equal(t, http.StatusOK, rr.Code)
	board := decodeBody[types.Leaderboard](t, rr)
	assert.Equal(t, 7, board.WindowDays)
	require.Len(t, board.Entries, 1)
	assert.Equal(t, "zeynep", board.Entries[0].Username)

	rr = serve(t, router, request{method: http.MethodGet, path: "/users/3/profile"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2, decodeBody[types.PublicProfile](t, rr).QuestionCount)

	rr = serve(t, router, request{method: http.MethodGet, path: "/users/4/profile"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Kullanıcı bulunamadı", errorBody(t, rr).Error)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/healthz", Healthz)
	router.Get("/health", Health(pingerFunc(func(context.Context) error { return nil })))
	router.Get("/health-down", Health(pingerFunc(func(context.Context) error { return errors.New("connection refused") })))

	rr := serve(t, router, request{method: http.MethodGet, path: "/healthz"})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, HealthResponse{Status: "ok"}, decodeBody[HealthResponse](t, rr))

	rr = serve(t, router, request{method: http.MethodGet, path: "/health"})
	assert.Equal(t, HealthResponse{Status: "ok", Database: "ok"}, decodeBody[HealthResponse](t, rr))

	rr = serve(t, router, request{method: http.MethodGet, path: "/health-down"})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, HealthResponse{Status: "ok", Database: "error"}, decodeBody[HealthResponse](t, rr))
}
