package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/unisoruyor/apiserver/internal/services"
	"github.com/unisoruyor/apiserver/types"
)

const msgAnswerNotFound = "Cevap bulunamadı"

// Answers is the answer service surface used by the HTTP layer.
type Answers interface {
	ListByQuestion(ctx context.Context, questionID int) ([]types.Answer, error)
	ListReplies(ctx context.Context, answerID int) ([]types.Answer, error)
	Create(ctx context.Context, user types.User, questionID int, in services.CreateAnswerInput) (types.Answer, error)
	Reply(ctx context.Context, user types.User, parentID int, in services.CreateAnswerInput) (types.Answer, error)
	Update(ctx context.Context, user types.User, id int, in services.UpdateAnswerInput) (types.Answer, error)
	Delete(ctx context.Context, user types.User, id int) error
}

// AnswerHandler provides HTTP handlers for answers and replies.
type AnswerHandler struct {
	answers Answers
}

func NewAnswerHandler(answers Answers) *AnswerHandler {
	return &AnswerHandler{answers: answers}
}

// AnswerRouter registers the /answers routes.
func AnswerRouter(r chi.Router, answers Answers, authMiddleware func(http.Handler) http.Handler) {
	handler := NewAnswerHandler(answers)

	r.Route("/{answerID}", func(r chi.Router) {
		r.Get("/replies", handler.ListReplies)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/replies", handler.CreateReply)
			r.Put("/", handler.UpdateAnswer)
			r.Delete("/", handler.DeleteAnswer)
		})
	})
}

func (h *AnswerHandler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	questionID, err := parseID(r, "questionID")
	if err != nil {
		writeError(w, http.StatusNotFound, "Soru bulunamadı")
		return
	}

	answers, err := h.answers.ListByQuestion(r.Context(), questionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answers)
}

func (h *AnswerHandler) CreateAnswer(w http.ResponseWriter, r *http.Request) {
	user, ok := requireSession(w, r)
	if !ok {
		return
	}
	questionID, err := parseID(r, "questionID")
	if err != nil {
		writeError(w, http.StatusNotFound, "Soru bulunamadı")
		return
	}

	var req services.CreateAnswerInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	answer, err := h.answers.Create(r.Context(), user, questionID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, answer)
}

func (h *AnswerHandler) ListReplies(w http.ResponseWriter, r *http.Request) {
	answerID, err := parseID(r, "answerID")
	if err != nil {
		writeError(w, http.StatusNotFound, msgAnswerNotFound)
		return
	}

	replies, err := h.answers.ListReplies(r.Context(), answerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, replies)
}

// CreateReply answers another answer. The question is taken from the parent.
func (h *AnswerHandler) CreateReply(w http.ResponseWriter, r *http.Request) {
	user, ok := requireSession(w, r)
	if !ok {
		return
	}
	answerID, err := parseID(r, "answerID")
	if err != nil {
		writeError(w, http.StatusNotFound, msgAnswerNotFound)
		return
	}

	var req services.CreateAnswerInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	reply, err := h.answers.Reply(r.Context(), user, answerID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reply)
}

func (h *AnswerHandler) UpdateAnswer(w http.ResponseWriter, r *http.Request) {
	user, ok := requireSession(w, r)
	if !ok {
		return
	}
	answerID, err := parseID(r, "answerID")
	if err != nil {
		writeError(w, http.StatusNotFound, msgAnswerNotFound)
		return
	}

	var req services.UpdateAnswerInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	answer, err := h.answers.Update(r.Context(), user, answerID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (h *AnswerHandler) DeleteAnswer(w http.ResponseWriter, r *http.Request) {
	user, ok := requireSession(w, r)
	if !ok {
		return
	}
	answerID, err := parseID(r, "answerID")
	if err != nil {
		writeError(w, http.StatusNotFound, msgAnswerNotFound)
		return
	}

	if err := h.answers.Delete(r.Context(), user, answerID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
