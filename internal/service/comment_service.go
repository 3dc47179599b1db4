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

type commentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByIssue(ctx context.Context, issueID int64) ([]models.Comment, error)
	DeleteForOwner(ctx context.Context, id, ownerID int64) error
}

// CommentService provides comment use cases. The guard authorizes the
// enclosing issue before reads and creation.
type CommentService struct {
	repo      commentRepository
	guard     *AuthzService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCommentService constructs a CommentService instance.
func NewCommentService(repo commentRepository, guard *AuthzService, validate *validator.Validate, logger *zap.Logger) *CommentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CommentService{repo: repo, guard: guard, validator: validate, logger: logger}
}

// Create adds a comment to an issue in a project the user owns.
func (s *CommentService) Create(ctx context.Context, userID, issueID int64, req models.CreateCommentRequest) (*models.Comment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload")
	}

	if err := s.guard.IssueOwned(ctx, userID, issueID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		IssueID:  issueID,
		AuthorID: userID,
		Content:  req.Content,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create comment")
	}
	return comment, nil
}

// ListByIssue returns the comments of an issue the user owns (via its
// project), oldest first.
func (s *CommentService) ListByIssue(ctx context.Context, userID, issueID int64) ([]models.Comment, error) {
	if err := s.guard.IssueOwned(ctx, userID, issueID); err != nil {
		return nil, err
	}

	comments, err := s.repo.ListByIssue(ctx, issueID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list comments")
	}
	return comments, nil
}

// Delete removes a comment from an owned project.
func (s *CommentService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.DeleteForOwner(ctx, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete comment")
	}
	return nil
}
