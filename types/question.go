package types

import "time"

// Question is a post asked by a student in a category.
// Author fields are captured when the question is posted and are
// not updated when the author later edits their profile.
type Question struct {
	// ID is the unique identifier of the question.
	ID int `json:"id" db:"id"`

	// Title is the short summary shown in lists.
	Title string `json:"title" db:"title"`

	// Content is the full body of the question.
	Content string `json:"content" db:"content"`

	// AuthorID references the user who asked the question.
	AuthorID int `json:"author_id" db:"author_id"`

	// Denormalized author identity and affiliation at post time.
	AuthorUsername   string `json:"author_username" db:"author_username"`
	AuthorUniversity string `json:"author_university" db:"author_university"`
	AuthorFaculty    string `json:"author_faculty" db:"author_faculty"`
	AuthorDepartment string `json:"author_department" db:"author_department"`

	// Category is a department or course name from the catalog.
	Category string `json:"category" db:"category"`

	// Counters are maintained by the database.
	ViewCount   int `json:"view_count" db:"view_count"`
	AnswerCount int `json:"answer_count" db:"answer_count"`
	LikeCount   int `json:"like_count" db:"like_count"`

	// Attachments lists the files linked to the question, when loaded.
	Attachments []FileUpload `json:"attachments,omitempty" db:"-"`

	// CreatedAt is the timestamp when the question was posted.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent edit.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// QuestionFilter narrows a question listing.
type QuestionFilter struct {
	Category string
	Search   string
	AuthorID int
}

// QuestionDetail is a question together with its answers.
type QuestionDetail struct {
	Question Question `json:"question"`
	Answers  []Answer `json:"answers"`
}

// LikeResult reports the like state after a like/unlike.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}
