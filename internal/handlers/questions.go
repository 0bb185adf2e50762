package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/unisoruyor/apiserver/internal/services"
	"github.com/unisoruyor/apiserver/types"
)

// Questions is the question service surface used by the HTTP layer.
type Questions interface {
	List(ctx context.Context, filter types.QuestionFilter, page, limit int) (types.Page[types.Question], error)
	Get(ctx context.Context, id int) (types.QuestionDetail, error)
	Create(ctx context.Context, user types.User, in services.CreateQuestionInput) (types.Question, error)
	Update(ctx context.Context, user types.User, id int, in services.UpdateQuestionInput) (types.Question, error)
	Delete(ctx context.Context, user types.User, id int) error
	ToggleLike(ctx context.Context, user types.User, id int) (types.LikeResult, error)
	Unlike(ctx context.Context, user types.User, id int) (types.LikeResult, error)
}

// QuestionHandler provides HTTP handlers for questions.
type QuestionHandler struct {
	questions Questions
}

func NewQuestionHandler(questions Questions) *QuestionHandler {
	return &QuestionHandler{questions: questions}
}

// QuestionRouter registers question routes, including the answers nested
// under a question.
func QuestionRouter(r chi.Router, questions Questions, answers Answers, authMiddleware func(http.Handler) http.Handler) {
	handler := NewQuestionHandler(questions)
	answerHandler := NewAnswerHandler(answers)

	r.Get("/", handler.ListQuestions)
	r.With(authMiddleware).Post("/", handler.CreateQuestion)
	r.Route("/{questionID}", func(r chi.Router) {
		r.Get("/", handler.GetQuestion)
		r.Get("/answers", answerHandler.ListAnswers)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Put("/", handler.UpdateQuestion)
			r.Delete("/", handler.DeleteQuestion)
			r.Post("/like", handler.ToggleLike)
			r.Delete("/like", handler.Unlike)
			r.Post("/answers", answerHandler.CreateAnswer)
		})
	})
}

func (h *QuestionHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	page, limit, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Geçersiz sayfalama parametresi")
		return
	}

	query := r.URL.Query()
	filter := types.QuestionFilter{
		Category: strings.TrimSpace(query.Get("category")),
		Search:   strings.TrimSpace(query.Get("search")),
	}
	if raw := strings.TrimSpace(query.Get("author_id")); raw != "" {
		filter.AuthorID, err = strconv.Atoi(raw)
		if err != nil || filter.AuthorID < 1 {
			writeError(w, http.StatusBadRequest, "Geçersiz kullanıcı")
			return
		}
	}

	result, err := h.questions.List(r.Context(), filter, page, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *QuestionHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "questionID")
	if err != nil {
		writeError(w, http.StatusNotFound, "Soru bulunamadı")
		return
	}

	detail, err := h.questions.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *QuestionHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	user, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req services.CreateQuestionInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	question, err := h.questions.Create(r.Context(), user, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

func (h *QuestionHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	user, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "questionID")
	if err != nil {
		writeError(w, http.StatusNotFound, "Soru bulunamadı")
		return
	}

	var req services.UpdateQuestionInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	question, err := h.questions.Update(r.Context(), user, id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

func (h *QuestionHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	user, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "questionID")
	if err != nil {
		writeError(w, http.StatusNotFound, "Soru bulunamadı")
		return
	}

	if err := h.questions.Delete(r.Context(), user, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleLike likes the question, or removes an existing like.
func (h *QuestionHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	h.like(w, r, h.questions.ToggleLike)
}

func (h *QuestionHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.like(w, r, h.questions.Unlike)
}

func (h *QuestionHandler) like(w http.ResponseWriter, r *http.Request, action func(context.Context, types.User, int) (types.LikeResult, error)) {
	user, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "questionID")
	if err != nil {
		writeError(w, http.StatusNotFound, "Soru bulunamadı")
		return
	}

	result, err := action(r.Context(), user, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
