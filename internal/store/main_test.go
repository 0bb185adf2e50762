package store

import (
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

var userRowColumns = []string{
	"id", "username", "email", "password_hash", "university", "faculty", "department",
	"is_admin", "is_suspended", "suspend_until", "suspend_reason", "is_muted", "mute_until",
	"last_question_at", "last_answer_at", "created_at", "updated_at",
}

func addUserRow(rows *sqlmock.Rows, id int, username string, extra ...driver.Value) *sqlmock.Rows {
	values := []driver.Value{
		id, username, username + "@example.com", "hash", "Boğaziçi Üniversitesi", "Mühendislik Fakültesi", "Bilgisayar Mühendisliği",
		false, false, nil, "", false, nil,
		nil, nil, fixedNow, fixedNow,
	}
	return rows.AddRow(append(values, extra...)...)
}

var questionRowColumns = []string{
	"id", "title", "content", "author_id", "author_username", "author_university", "author_faculty",
	"author_department", "category", "view_count", "answer_count", "like_count", "created_at", "updated_at",
}

func addQuestionRow(rows *sqlmock.Rows, id int, title string, views int) *sqlmock.Rows {
	return rows.AddRow(
		id, title, "İçerik", 1, "ayse", "Boğaziçi Üniversitesi", "Mühendislik Fakültesi",
		"Bilgisayar Mühendisliği", "Bilgisayar Mühendisliği", views, 0, 0, fixedNow, fixedNow,
	)
}

var answerRowColumns = []string{
	"id", "question_id", "content", "author_id", "author_username", "parent_answer_id",
	"mentioned_users", "reply_count", "created_at", "updated_at",
}
