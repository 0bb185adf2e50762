package types

import "time"

// User represents a registered student account.
// It carries the academic profile, moderation state, and the
// timestamps used by the posting cooldown.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique public handle used in mentions.
	Username string `json:"username" db:"username"`

	// Email is the user's email address; also accepted at login.
	Email string `json:"email" db:"email"`

	// University, Faculty and Department form the academic profile
	// shown next to every question the user posts.
	University string `json:"university" db:"university"`
	Faculty    string `json:"faculty" db:"faculty"`
	Department string `json:"department" db:"department"`

	// IsAdmin grants access to moderation endpoints and exempts
	// the user from the posting cooldown.
	IsAdmin bool `json:"is_admin" db:"is_admin"`

	// IsSuspended blocks every authenticated request until SuspendUntil.
	IsSuspended   bool       `json:"is_suspended" db:"is_suspended"`
	SuspendUntil  *time.Time `json:"suspend_until,omitempty" db:"suspend_until"`
	SuspendReason string     `json:"suspend_reason,omitempty" db:"suspend_reason"`

	// IsMuted blocks content creation until MuteUntil.
	IsMuted   bool       `json:"is_muted" db:"is_muted"`
	MuteUntil *time.Time `json:"mute_until,omitempty" db:"mute_until"`

	// LastQuestionAt and LastAnswerAt record the most recent post of each kind.
	LastQuestionAt *time.Time `json:"-" db:"last_question_at"`
	LastAnswerAt   *time.Time `json:"-" db:"last_answer_at"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SuspendedAt reports whether the suspension is still in force at now.
func (u User) SuspendedAt(now time.Time) bool {
	return u.IsSuspended && u.SuspendUntil != nil && u.SuspendUntil.After(now)
}

// MutedAt reports whether the mute is still in force at now.
func (u User) MutedAt(now time.Time) bool {
	return u.IsMuted && u.MuteUntil != nil && u.MuteUntil.After(now)
}

// LastPostAt returns the later of the two post timestamps, or nil.
func (u User) LastPostAt() *time.Time {
	switch {
	case u.LastQuestionAt == nil:
		return u.LastAnswerAt
	case u.LastAnswerAt == nil:
		return u.LastQuestionAt
	case u.LastAnswerAt.After(*u.LastQuestionAt):
		return u.LastAnswerAt
	default:
		return u.LastQuestionAt
	}
}

// UserSummary is the admin view of a user with activity totals.
type UserSummary struct {
	User
	QuestionCount int `json:"question_count" db:"question_count"`
	AnswerCount   int `json:"answer_count" db:"answer_count"`
}

// PublicProfile is what other users see on a profile page.
type PublicProfile struct {
	ID              int        `json:"id"`
	Username        string     `json:"username"`
	University      string     `json:"university"`
	Faculty         string     `json:"faculty"`
	Department      string     `json:"department"`
	IsAdmin         bool       `json:"is_admin"`
	CreatedAt       time.Time  `json:"created_at"`
	QuestionCount   int        `json:"question_count"`
	AnswerCount     int        `json:"answer_count"`
	RecentQuestions []Question `json:"recent_questions"`
	RecentAnswers   []Answer   `json:"recent_answers"`
}

// PostKind distinguishes the two post timestamps on a user.
type PostKind string

const (
	PostQuestion PostKind = "question"
	PostAnswer   PostKind = "answer"
)
