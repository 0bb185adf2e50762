package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/unisoruyor/apiserver/types"
)

// Catalog lists the fixed academic choices offered by the client.
type Catalog interface {
	Categories() map[string][]string
	Universities() []string
	Faculties() []string
}

// Leaderboard serves the weekly activity ranking.
type Leaderboard interface {
	Top(ctx context.Context) (types.Leaderboard, error)
}

// Profiles serves public user pages.
type Profiles interface {
	Get(ctx context.Context, id int) (types.PublicProfile, error)
}

// CatalogRouter registers the public read-only routes.
func CatalogRouter(r chi.Router, catalog Catalog, leaderboard Leaderboard, profiles Profiles) {
	r.Get("/categories", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, catalog.Categories())
	})
	r.Get("/universities", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, UniversitiesResponse{Universities: catalog.Universities()})
	})
	r.Get("/faculties", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, FacultiesResponse{Faculties: catalog.Faculties()})
	})

	r.Get("/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		board, err := leaderboard.Top(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, board)
	})

	r.Get("/users/{userID}/profile", func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "userID")
		if err != nil {
			writeError(w, http.StatusNotFound, "Kullanıcı bulunamadı")
			return
		}
		profile, err := profiles.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	})
}

type UniversitiesResponse struct {
	Universities []string `json:"universities"`
}

type FacultiesResponse struct {
	Faculties []string `json:"faculties"`
}
