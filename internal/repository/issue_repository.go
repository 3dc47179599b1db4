package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/devpulse/tracker-api/internal/models"
)

// IssueRepository provides database access for issues. Ownership is
// transitive through the parent project: every owner-scoped query resolves
// the project owner, so a foreign issue is indistinguishable from a missing
// one.
type IssueRepository struct {
	db *sqlx.DB
}

// NewIssueRepository creates a new instance of IssueRepository.
func NewIssueRepository(db *sqlx.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// Create inserts an issue and fills in generated fields. The caller is
// responsible for having authorized the parent project.
func (r *IssueRepository) Create(ctx context.Context, issue *models.Issue) error {
	now := time.Now().UTC()
	issue.CreatedAt = now
	issue.UpdatedAt = now
	if issue.Status == "" {
		issue.Status = "open"
	}
	const query = `INSERT INTO issues (project_id, creator_id, title, description, status, priority, due_date, created_at, updated_at)
                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	if err := r.db.GetContext(ctx, &issue.ID, query, issue.ProjectID, issue.CreatorID, issue.Title, issue.Description, issue.Status, issue.Priority, issue.DueDate, issue.CreatedAt, issue.UpdatedAt); err != nil {
		return fmt.Errorf("create issue: %w", err)
	}
	return nil
}

// ListByProject returns a project's issues, optionally filtered by status or
// a title/description search, newest first.
func (r *IssueRepository) ListByProject(ctx context.Context, projectID int64, filter models.IssueFilter) ([]models.Issue, error) {
	query := `SELECT id, project_id, creator_id, title, description, status, priority, due_date, created_at, updated_at
                FROM issues WHERE project_id = $1`
	args := []interface{}{projectID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		query += fmt.Sprintf(" AND (LOWER(title) LIKE $%d OR LOWER(COALESCE(description, '')) LIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY created_at DESC"

	issues := []models.Issue{}
	if err := r.db.SelectContext(ctx, &issues, query, args...); err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	return issues, nil
}

// GetForOwner returns the issue only when the user owns its parent project.
func (r *IssueRepository) GetForOwner(ctx context.Context, id, ownerID int64) (*models.Issue, error) {
	const query = `SELECT i.id, i.project_id, i.creator_id, i.title, i.description, i.status, i.priority, i.due_date, i.created_at, i.updated_at
                FROM issues i
                JOIN projects p ON p.id = i.project_id
                WHERE i.id = $1 AND p.owner_id = $2 LIMIT 1`
	var issue models.Issue
	if err := r.db.GetContext(ctx, &issue, query, id, ownerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get issue: %w", err)
	}
	return &issue, nil
}

// ProjectOwnerOf returns the owning user id of the issue's parent project.
func (r *IssueRepository) ProjectOwnerOf(ctx context.Context, id int64) (int64, error) {
	const query = `SELECT p.owner_id FROM issues i JOIN projects p ON p.id = i.project_id WHERE i.id = $1 LIMIT 1`
	var ownerID int64
	if err := r.db.GetContext(ctx, &ownerID, query, id); err != nil {
		if err == sql.ErrNoRows {
			return 0, err
		}
		return 0, fmt.Errorf("issue project owner: %w", err)
	}
	return ownerID, nil
}

// UpdateForOwner applies partial updates when the user owns the parent
// project and returns the updated row.
func (r *IssueRepository) UpdateForOwner(ctx context.Context, id, ownerID int64, patch models.UpdateIssueRequest) (*models.Issue, error) {
	const query = `UPDATE issues SET
                title = COALESCE($3, title),
                description = COALESCE($4, description),
                status = COALESCE($5, status),
                priority = COALESCE($6, priority),
                due_date = COALESCE($7, due_date),
                updated_at = $8
                WHERE id = $1 AND project_id IN (SELECT id FROM projects WHERE owner_id = $2)
                RETURNING id, project_id, creator_id, title, description, status, priority, due_date, created_at, updated_at`
	var issue models.Issue
	if err := r.db.GetContext(ctx, &issue, query, id, ownerID, patch.Title, patch.Description, patch.Status, patch.Priority, patch.DueDate, time.Now().UTC()); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("update issue: %w", err)
	}
	return &issue, nil
}

// DeleteForOwner removes the issue when the user owns its parent project;
// comments cascade.
func (r *IssueRepository) DeleteForOwner(ctx context.Context, id, ownerID int64) error {
	const query = `DELETE FROM issues WHERE id = $1 AND project_id IN (SELECT id FROM projects WHERE owner_id = $2)`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete issue: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
