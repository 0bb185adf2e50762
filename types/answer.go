package types

import "time"

// Answer is a response to a question. When ParentAnswerID is set the
// answer is a reply to another answer on the same question.
type Answer struct {
	ID             int          `json:"id" db:"id"`
	QuestionID     int          `json:"question_id" db:"question_id"`
	Content        string       `json:"content" db:"content"`
	AuthorID       int          `json:"author_id" db:"author_id"`
	AuthorUsername string       `json:"author_username" db:"author_username"`
	ParentAnswerID *int         `json:"parent_answer_id,omitempty" db:"parent_answer_id"`
	MentionedUsers []string     `json:"mentioned_users" db:"mentioned_users"`
	ReplyCount     int          `json:"reply_count" db:"reply_count"`
	Attachments    []FileUpload `json:"attachments,omitempty" db:"-"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}

// IsReply reports whether the answer replies to another answer.
func (a Answer) IsReply() bool {
	return a.ParentAnswerID != nil
}
