package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unisoruyor/apiserver/types"
)

func TestProfileService_Get(t *testing.T) {
	f := newForum(student(1, "ayse"), student(2, "ali"))
	for id := 1; id <= 7; id++ {
		f.questions.byID[id] = types.Question{ID: id, AuthorID: 1, Title: "Soru"}
	}
	f.questions.byID[8] = types.Question{ID: 8, AuthorID: 2}
	f.answers.byID[20] = types.Answer{ID: 20, AuthorID: 1, QuestionID: 8}
	svc := NewProfileService(f.users, f.questions, f.answers)

	profile, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "ayse", profile.Username)
	assert.Equal(t, 7, profile.QuestionCount)
	assert.Len(t, profile.RecentQuestions, 5)
	assert.Equal(t, 7, profile.RecentQuestions[0].ID)
	assert.Equal(t, 1, profile.AnswerCount)
	assert.Len(t, profile.RecentAnswers, 1)

	empty, err := svc.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, empty.RecentAnswers)
	assert.NotNil(t, empty.RecentAnswers)

	_, err = svc.Get(context.Background(), 99)
	assert.EqualError(t, err, "Kullanıcı bulunamadı")
}
