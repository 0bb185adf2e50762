package services

import (
	"context"
	"errors"

	"github.com/unisoruyor/apiserver/internal/store"
	"github.com/unisoruyor/apiserver/types"
)

const profileRecentLimit = 5

// ProfileService builds public profile pages.
type ProfileService struct {
	users     UserRepository
	questions QuestionRepository
	answers   AnswerRepository
}

func NewProfileService(users UserRepository, questions QuestionRepository, answers AnswerRepository) *ProfileService {
	return &ProfileService{users: users, questions: questions, answers: answers}
}

// Get returns the public view of a user with activity totals and recent posts.
func (s *ProfileService) Get(ctx context.Context, id int) (types.PublicProfile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.PublicProfile{}, ErrNotFound(msgUserNotFound)
		}
		return types.PublicProfile{}, err
	}

	recent, questionCount, err := s.questions.List(ctx, types.QuestionFilter{AuthorID: id}, 0, profileRecentLimit)
	if err != nil {
		return types.PublicProfile{}, err
	}
	answers, err := s.answers.ListRecentByAuthor(ctx, id, profileRecentLimit)
	if err != nil {
		return types.PublicProfile{}, err
	}
	answerCount, err := s.answers.CountByAuthor(ctx, id)
	if err != nil {
		return types.PublicProfile{}, err
	}

	if recent == nil {
		recent = []types.Question{}
	}
	if answers == nil {
		answers = []types.Answer{}
	}
	return types.PublicProfile{
		ID:              user.ID,
		Username:        user.Username,
		University:      user.University,
		Faculty:         user.Faculty,
		Department:      user.Department,
		IsAdmin:         user.IsAdmin,
		CreatedAt:       user.CreatedAt,
		QuestionCount:   questionCount,
		AnswerCount:     answerCount,
		RecentQuestions: recent,
		RecentAnswers:   answers,
	}, nil
}
