package models

import "time"

// Issue belongs to exactly one project. CreatorID records who opened it, but
// authorization follows the parent project's owner, not the creator.
type Issue struct {
	ID          int64      `db:"id" json:"id"`
	ProjectID   int64      `db:"project_id" json:"project_id"`
	CreatorID   int64      `db:"creator_id" json:"creator_id"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description,omitempty"`
	Status      string     `db:"status" json:"status"`
	Priority    int        `db:"priority" json:"priority"`
	DueDate     *time.Time `db:"due_date" json:"due_date,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// CreateIssueRequest is the payload for opening an issue.
type CreateIssueRequest struct {
	ProjectID   int64      `json:"project_id" validate:"required,gt=0"`
	Title       string     `json:"title" validate:"required,min=1,max=255"`
	Description *string    `json:"description,omitempty"`
	Priority    *int       `json:"priority,omitempty" validate:"omitempty,min=0,max=3"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateIssueRequest carries partial updates; nil fields keep their value.
type UpdateIssueRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=open in_progress done closed"`
	Priority    *int       `json:"priority,omitempty" validate:"omitempty,min=0,max=3"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// IssueFilter narrows issue listings within a project.
type IssueFilter struct {
	Status string
	Search string
}
