package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/devpulse/tracker-api/internal/models"
)

// ProjectRepository provides database access for projects. Every read and
// mutation is scoped to the owning user: a row owned by someone else behaves
// exactly like a row that does not exist.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new instance of ProjectRepository.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a project for the owner and fills in generated fields.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.Status == "" {
		project.Status = "active"
	}
	const query = `INSERT INTO projects (owner_id, name, description, status, color, created_at, updated_at)
                VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.GetContext(ctx, &project.ID, query, project.OwnerID, project.Name, project.Description, project.Status, project.Color, project.CreatedAt, project.UpdatedAt); err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// ListByOwner returns every project owned by the user, newest first.
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Project, error) {
	const query = `SELECT id, owner_id, name, description, status, color, created_at, updated_at
                FROM projects WHERE owner_id = $1 ORDER BY created_at DESC`
	projects := []models.Project{}
	if err := r.db.SelectContext(ctx, &projects, query, ownerID); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// GetForOwner returns the project only when the user owns it.
func (r *ProjectRepository) GetForOwner(ctx context.Context, id, ownerID int64) (*models.Project, error) {
	const query = `SELECT id, owner_id, name, description, status, color, created_at, updated_at
                FROM projects WHERE id = $1 AND owner_id = $2 LIMIT 1`
	var project models.Project
	if err := r.db.GetContext(ctx, &project, query, id, ownerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &project, nil
}

// OwnerOf returns the owning user id for a project.
func (r *ProjectRepository) OwnerOf(ctx context.Context, id int64) (int64, error) {
	const query = `SELECT owner_id FROM projects WHERE id = $1 LIMIT 1`
	var ownerID int64
	if err := r.db.GetContext(ctx, &ownerID, query, id); err != nil {
		if err == sql.ErrNoRows {
			return 0, err
		}
		return 0, fmt.Errorf("project owner: %w", err)
	}
	return ownerID, nil
}

// UpdateForOwner applies partial updates when the user owns the project and
// returns the updated row. COALESCE keeps values whose patch field is nil.
func (r *ProjectRepository) UpdateForOwner(ctx context.Context, id, ownerID int64, patch models.UpdateProjectRequest) (*models.Project, error) {
	const query = `UPDATE projects SET
                name = COALESCE($3, name),
                description = COALESCE($4, description),
                status = COALESCE($5, status),
                color = COALESCE($6, color),
                updated_at = $7
                WHERE id = $1 AND owner_id = $2
                RETURNING id, owner_id, name, description, status, color, created_at, updated_at`
	var project models.Project
	if err := r.db.GetContext(ctx, &project, query, id, ownerID, patch.Name, patch.Description, patch.Status, patch.Color, time.Now().UTC()); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	return &project, nil
}

// DeleteForOwner removes the project when the user owns it; contained issues
// and comments cascade.
func (r *ProjectRepository) DeleteForOwner(ctx context.Context, id, ownerID int64) error {
	const query = `DELETE FROM projects WHERE id = $1 AND owner_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
