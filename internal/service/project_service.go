package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/devpulse/tracker-api/internal/models"
	appErrors "github.com/devpulse/tracker-api/pkg/errors"
)

type projectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Project, error)
	GetForOwner(ctx context.Context, id, ownerID int64) (*models.Project, error)
	UpdateForOwner(ctx context.Context, id, ownerID int64, patch models.UpdateProjectRequest) (*models.Project, error)
	DeleteForOwner(ctx context.Context, id, ownerID int64) error
}

// ProjectService provides project use cases. All reads and mutations are
// owner-scoped; a project owned by another user is reported as not found.
type ProjectService struct {
	repo      projectRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProjectService constructs a ProjectService instance.
func NewProjectService(repo projectRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ProjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProjectService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Create adds a project owned by ownerID.
func (s *ProjectService) Create(ctx context.Context, ownerID int64, req models.CreateProjectRequest) (*models.Project, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid project payload")
	}

	project := &models.Project{
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create project")
	}

	s.invalidateList(ctx, ownerID)
	return project, nil
}

// List returns every project of the owner. An owner with no projects gets
// an empty slice, not an error.
func (s *ProjectService) List(ctx context.Context, ownerID int64) ([]models.Project, error) {
	key := projectListCacheKey(ownerID)

	var cached []models.Project
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	projects, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list projects")
	}

	if err := s.cache.Set(ctx, key, projects, 0); err != nil {
		s.logger.Warn("failed to cache project list", zap.Int64("owner_id", ownerID), zap.Error(err))
	}
	return projects, nil
}

// Get returns a single project owned by ownerID.
func (s *ProjectService) Get(ctx context.Context, ownerID, id int64) (*models.Project, error) {
	project, err := s.repo.GetForOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch project")
	}
	return project, nil
}

// Update applies a partial update to an owned project.
func (s *ProjectService) Update(ctx context.Context, ownerID, id int64, req models.UpdateProjectRequest) (*models.Project, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid project payload")
	}

	project, err := s.repo.UpdateForOwner(ctx, id, ownerID, req)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update project")
	}

	s.invalidateList(ctx, ownerID)
	return project, nil
}

// Delete removes an owned project and everything nested under it.
func (s *ProjectService) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.repo.DeleteForOwner(ctx, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete project")
	}

	s.invalidateList(ctx, ownerID)
	return nil
}

func (s *ProjectService) invalidateList(ctx context.Context, ownerID int64) {
	if err := s.cache.Invalidate(ctx, projectListCacheKey(ownerID)); err != nil {
		s.logger.Warn("failed to invalidate project cache", zap.Int64("owner_id", ownerID), zap.Error(err))
	}
}

func projectListCacheKey(ownerID int64) string {
	return fmt.Sprintf("projects:owner:%d", ownerID)
}
