package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/unisoruyor/apiserver/internal/observability"
	"github.com/unisoruyor/apiserver/internal/profanity"
	"github.com/unisoruyor/apiserver/internal/store"
	"github.com/unisoruyor/apiserver/types"
)

// QuestionRepository defines persistence operations for questions.
type QuestionRepository interface {
	List(ctx context.Context, filter types.QuestionFilter, offset, limit int) ([]types.Question, int, error)
	Get(ctx context.Context, id int) (types.Question, error)
	View(ctx context.Context, id int) (types.Question, error)
	Create(ctx context.Context, question types.Question) (types.Question, error)
	Update(ctx context.Context, question types.Question) (types.Question, error)
	Delete(ctx context.Context, id int) error
}

// LikeRepository defines persistence operations for question likes.
type LikeRepository interface {
	Like(ctx context.Context, questionID, userID int) (bool, error)
	Unlike(ctx context.Context, questionID, userID int) (bool, error)
	HasLiked(ctx context.Context, questionID, userID int) (bool, error)
	Count(ctx context.Context, questionID int) (int, error)
}

// CreateQuestionInput is the payload of a new question.
type CreateQuestionInput struct {
	Title         string   `json:"title" validate:"required,notblank,min=5,max=200"`
	Content       string   `json:"content" validate:"required,notblank,min=10,max=10000"`
	Category      string   `json:"category" validate:"required"`
	AttachmentIDs []string `json:"attachment_ids"`
}

// UpdateQuestionInput carries the fields to change; nil keeps the current value.
type UpdateQuestionInput struct {
	Title   *string `json:"title" validate:"omitempty,notblank,min=5,max=200"`
	Content *string `json:"content" validate:"omitempty,notblank,min=10,max=10000"`
}

// QuestionService implements asking, browsing and liking questions.
type QuestionService struct {
	questions     QuestionRepository
	answers       AnswerRepository
	likes         LikeRepository
	files         FileRepository
	catalog       *Catalog
	gate          *PostGate
	notifications *NotificationService
}

func NewQuestionService(
	questions QuestionRepository,
	answers AnswerRepository,
	likes LikeRepository,
	files FileRepository,
	catalog *Catalog,
	gate *PostGate,
	notifications *NotificationService,
) *QuestionService {
	return &QuestionService{
		questions:     questions,
		answers:       answers,
		likes:         likes,
		files:         files,
		catalog:       catalog,
		gate:          gate,
		notifications: notifications,
	}
}

// checkClean rejects text containing a blocklisted term.
// label is the Turkish field name used in the message.
func checkClean(field, label, text string) error {
	match, found := profanity.Check(text)
	if !found {
		return nil
	}
	observability.ProfanityRejectionsTotal.WithLabelValues(field, string(match.Category)).Inc()
	return ErrValidation(fmt.Sprintf("%s uygunsuz içerik barındırıyor (%s)", label, match.Category))
}

func (s *QuestionService) List(ctx context.Context, filter types.QuestionFilter, page, limit int) (types.Page[types.Question], error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Search = strings.TrimSpace(filter.Search)

	questions, total, err := s.questions.List(ctx, filter, (page-1)*limit, limit)
	if err != nil {
		return types.Page[types.Question]{}, err
	}
	return types.NewPage(questions, page, limit, total), nil
}

func (s *QuestionService) get(ctx context.Context, id int) (types.Question, error) {
	question, err := s.questions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Question{}, ErrNotFound(msgQuestionNotFound)
		}
		return types.Question{}, err
	}
	return question, nil
}

// Get counts a view and returns the question with all answers and attachments.
func (s *QuestionService) Get(ctx context.Context, id int) (types.QuestionDetail, error) {
	question, err := s.questions.View(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.QuestionDetail{}, ErrNotFound(msgQuestionNotFound)
		}
		return types.QuestionDetail{}, err
	}

	attachments, err := s.files.ListByQuestion(ctx, id)
	if err != nil {
		return types.QuestionDetail{}, err
	}
	question.Attachments = withURLs(attachments)

	answers, err := s.answers.ListByQuestion(ctx, id)
	if err != nil {
		return types.QuestionDetail{}, err
	}
	if err := attachAnswerFiles(ctx, s.files, answers); err != nil {
		return types.QuestionDetail{}, err
	}

	return types.QuestionDetail{Question: question, Answers: answers}, nil
}

// Create posts a question for user.
func (s *QuestionService) Create(ctx context.Context, user types.User, in CreateQuestionInput) (types.Question, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Category = strings.TrimSpace(in.Category)
	if err := validate(in); err != nil {
		return types.Question{}, err
	}
	if !s.catalog.HasCategory(in.Category) {
		return types.Question{}, ErrValidation("Geçersiz kategori")
	}

	if err := s.gate.CheckMuted(user, ActionQuestion); err != nil {
		return types.Question{}, err
	}
	if err := checkClean("title", "Başlık", in.Title); err != nil {
		return types.Question{}, err
	}
	if err := checkClean("content", "İçerik", in.Content); err != nil {
		return types.Question{}, err
	}

	fileIDs, err := ownedAttachments(ctx, s.files, user.ID, in.AttachmentIDs)
	if err != nil {
		return types.Question{}, err
	}

	if err := s.gate.Reserve(ctx, user, ActionQuestion); err != nil {
		return types.Question{}, err
	}

	created, err := s.questions.Create(ctx, types.Question{
		Title:            in.Title,
		Content:          in.Content,
		AuthorID:         user.ID,
		AuthorUsername:   user.Username,
		AuthorUniversity: user.University,
		AuthorFaculty:    user.Faculty,
		AuthorDepartment: user.Department,
		Category:         in.Category,
	})
	if err != nil {
		return types.Question{}, err
	}

	if len(fileIDs) > 0 {
		if err := s.files.AttachToQuestion(ctx, created.ID, fileIDs); err != nil {
			slog.WarnContext(ctx, "failed to attach files to question", "question_id", created.ID, "files", len(fileIDs), "error", err)
		} else if attachments, err := s.files.ListByQuestion(ctx, created.ID); err != nil {
			slog.WarnContext(ctx, "failed to load question attachments", "question_id", created.ID, "error", err)
		} else {
			created.Attachments = withURLs(attachments)
		}
	}

	slog.InfoContext(ctx, "question created", "question_id", created.ID, "category", created.Category)
	return created, nil
}

// Update edits a question. Only the author or an admin may edit.
func (s *QuestionService) Update(ctx context.Context, user types.User, id int, in UpdateQuestionInput) (types.Question, error) {
	question, err := s.get(ctx, id)
	if err != nil {
		return types.Question{}, err
	}
	if question.AuthorID != user.ID && !user.IsAdmin {
		return types.Question{}, ErrForbidden("Bu soruyu düzenleme yetkiniz yok")
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
	}
	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		in.Content = &content
	}
	if err := validate(in); err != nil {
		return types.Question{}, err
	}

	if in.Title != nil {
		if err := checkClean("title", "Başlık", *in.Title); err != nil {
			return types.Question{}, err
		}
		question.Title = *in.Title
	}
	if in.Content != nil {
		if err := checkClean("content", "İçerik", *in.Content); err != nil {
			return types.Question{}, err
		}
		question.Content = *in.Content
	}

	updated, err := s.questions.Update(ctx, question)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Question{}, ErrNotFound(msgQuestionNotFound)
		}
		return types.Question{}, err
	}
	return updated, nil
}

// Delete removes a question with its answers, likes and attachment links.
func (s *QuestionService) Delete(ctx context.Context, user types.User, id int) error {
	question, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if question.AuthorID != user.ID && !user.IsAdmin {
		return ErrForbidden("Bu soruyu silme yetkiniz yok")
	}
	return s.delete(ctx, id)
}

func (s *QuestionService) delete(ctx context.Context, id int) error {
	if err := s.questions.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound(msgQuestionNotFound)
		}
		return err
	}
	return nil
}

// ToggleLike likes the question, or removes the like if the user already liked it.
func (s *QuestionService) ToggleLike(ctx context.Context, user types.User, id int) (types.LikeResult, error) {
	question, err := s.get(ctx, id)
	if err != nil {
		return types.LikeResult{}, err
	}

	liked, err := s.likes.HasLiked(ctx, id, user.ID)
	if err != nil {
		return types.LikeResult{}, err
	}
	if liked {
		return s.unlike(ctx, user, id)
	}

	inserted, err := s.likes.Like(ctx, id, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.LikeResult{}, ErrNotFound(msgQuestionNotFound)
		}
		return types.LikeResult{}, err
	}
	if inserted && question.AuthorID != user.ID {
		s.notifications.Notify(ctx, types.Notification{
			UserID:            question.AuthorID,
			Type:              types.NotificationLike,
			Title:             "Sorunuz beğenildi",
			Message:           fmt.Sprintf("%s sorunuzu beğendi", user.Username),
			RelatedQuestionID: intPtr(question.ID),
			FromUserID:        intPtr(user.ID),
			FromUsername:      user.Username,
		})
	}
	return s.likeResult(ctx, id, true)
}

// Unlike removes the user's like. It is a no-op when there is none.
func (s *QuestionService) Unlike(ctx context.Context, user types.User, id int) (types.LikeResult, error) {
	if _, err := s.get(ctx, id); err != nil {
		return types.LikeResult{}, err
	}
	return s.unlike(ctx, user, id)
}

func (s *QuestionService) unlike(ctx context.Context, user types.User, id int) (types.LikeResult, error) {
	if _, err := s.likes.Unlike(ctx, id, user.ID); err != nil {
		return types.LikeResult{}, err
	}
	return s.likeResult(ctx, id, false)
}

func (s *QuestionService) likeResult(ctx context.Context, id int, liked bool) (types.LikeResult, error) {
	count, err := s.likes.Count(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.LikeResult{}, ErrNotFound(msgQuestionNotFound)
		}
		return types.LikeResult{}, err
	}
	return types.LikeResult{Liked: liked, LikeCount: count}, nil
}
