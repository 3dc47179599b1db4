package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/devpulse/tracker-api/internal/models"
	appErrors "github.com/devpulse/tracker-api/pkg/errors"
)

type issueRepository interface {
	Create(ctx context.Context, issue *models.Issue) error
	ListByProject(ctx context.Context, projectID int64, filter models.IssueFilter) ([]models.Issue, error)
	GetForOwner(ctx context.Context, id, ownerID int64) (*models.Issue, error)
	UpdateForOwner(ctx context.Context, id, ownerID int64, patch models.UpdateIssueRequest) (*models.Issue, error)
	DeleteForOwner(ctx context.Context, id, ownerID int64) error
}

// IssueService provides issue use cases. The guard authorizes the parent
// project before any listing or creation; single-row operations are
// owner-scoped in the repository.
type IssueService struct {
	repo      issueRepository
	guard     *AuthzService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewIssueService constructs an IssueService instance.
func NewIssueService(repo issueRepository, guard *AuthzService, validate *validator.Validate, logger *zap.Logger) *IssueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &IssueService{repo: repo, guard: guard, validator: validate, logger: logger}
}

// Create opens an issue in a project the user owns.
func (s *IssueService) Create(ctx context.Context, userID int64, req models.CreateIssueRequest) (*models.Issue, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid issue payload")
	}

	if err := s.guard.ProjectOwned(ctx, userID, req.ProjectID); err != nil {
		return nil, err
	}

	issue := &models.Issue{
		ProjectID:   req.ProjectID,
		CreatorID:   userID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}
	if req.Priority != nil {
		issue.Priority = *req.Priority
	}
	if err := s.repo.Create(ctx, issue); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create issue")
	}
	return issue, nil
}

// ListByProject returns the issues of a project the user owns.
func (s *IssueService) ListByProject(ctx context.Context, userID, projectID int64, filter models.IssueFilter) ([]models.Issue, error) {
	if err := s.guard.ProjectOwned(ctx, userID, projectID); err != nil {
		return nil, err
	}

	issues, err := s.repo.ListByProject(ctx, projectID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list issues")
	}
	return issues, nil
}

// Get returns a single issue whose parent project the user owns.
func (s *IssueService) Get(ctx context.Context, userID, id int64) (*models.Issue, error) {
	issue, err := s.repo.GetForOwner(ctx, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch issue")
	}
	return issue, nil
}

// Update applies a partial update to an issue in an owned project.
func (s *IssueService) Update(ctx context.Context, userID, id int64, req models.UpdateIssueRequest) (*models.Issue, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid issue payload")
	}

	issue, err := s.repo.UpdateForOwner(ctx, id, userID, req)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update issue")
	}
	return issue, nil
}

// Delete removes an issue from an owned project; comments cascade.
func (s *IssueService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.DeleteForOwner(ctx, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete issue")
	}
	return nil
}
