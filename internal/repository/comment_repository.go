package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/devpulse/tracker-api/internal/models"
)

// CommentRepository provides database access for issue comments. Ownership
// resolves comment → issue → project → owner.
type CommentRepository struct {
	db *sqlx.DB
}

// NewCommentRepository creates a new instance of CommentRepository.
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a comment and reloads it with the author username joined
// in. The caller is responsible for having authorized the parent issue.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	const insert = `INSERT INTO comments (issue_id, author_id, content, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.GetContext(ctx, &comment.ID, insert, comment.IssueID, comment.AuthorID, comment.Content, comment.CreatedAt); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}

	const reload = `SELECT c.id, c.issue_id, c.author_id, u.username AS author_username, c.content, c.created_at
                FROM comments c JOIN users u ON u.id = c.author_id WHERE c.id = $1 LIMIT 1`
	if err := r.db.GetContext(ctx, comment, reload, comment.ID); err != nil {
		return fmt.Errorf("reload comment: %w", err)
	}
	return nil
}

// ListByIssue returns an issue's comments, oldest first.
func (r *CommentRepository) ListByIssue(ctx context.Context, issueID int64) ([]models.Comment, error) {
	const query = `SELECT c.id, c.issue_id, c.author_id, u.username AS author_username, c.content, c.created_at
                FROM comments c JOIN users u ON u.id = c.author_id
                WHERE c.issue_id = $1 ORDER BY c.created_at ASC`
	comments := []models.Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, issueID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// ProjectOwnerOf returns the owning user id of the comment's enclosing
// project.
func (r *CommentRepository) ProjectOwnerOf(ctx context.Context, id int64) (int64, error) {
	const query = `SELECT p.owner_id FROM comments c
                JOIN issues i ON i.id = c.issue_id
                JOIN projects p ON p.id = i.project_id
                WHERE c.id = $1 LIMIT 1`
	var ownerID int64
	if err := r.db.GetContext(ctx, &ownerID, query, id); err != nil {
		if err == sql.ErrNoRows {
			return 0, err
		}
		return 0, fmt.Errorf("comment project owner: %w", err)
	}
	return ownerID, nil
}

// DeleteForOwner removes the comment when the user owns the enclosing
// project.
func (r *CommentRepository) DeleteForOwner(ctx context.Context, id, ownerID int64) error {
	const query = `DELETE FROM comments WHERE id = $1 AND issue_id IN (
                SELECT i.id FROM issues i JOIN projects p ON p.id = i.project_id WHERE p.owner_id = $2)`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
