package models

import "time"

// Comment belongs to exactly one issue; authorization follows the issue's
// project owner.
type Comment struct {
	ID             int64     `db:"id" json:"id"`
	IssueID        int64     `db:"issue_id" json:"issue_id"`
	AuthorID       int64     `db:"author_id" json:"author_id"`
	AuthorUsername string    `db:"author_username" json:"author_username"`
	Content        string    `db:"content" json:"content"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// CreateCommentRequest is the payload for commenting on an issue.
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1"`
}
