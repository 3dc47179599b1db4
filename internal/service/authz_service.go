package service

import (
	"context"
	"database/sql"
	"errors"

	appErrors "github.com/devpulse/tracker-api/pkg/errors"
)

type projectOwnerResolver interface {
	OwnerOf(ctx context.Context, id int64) (int64, error)
}

type issueOwnerResolver interface {
	ProjectOwnerOf(ctx context.Context, id int64) (int64, error)
}

type commentOwnerResolver interface {
	ProjectOwnerOf(ctx context.Context, id int64) (int64, error)
}

// AuthzService decides resource access by ownership. Issues and comments
// inherit the owner of their enclosing project; the issue's own creator
// field carries no authority.
//
// Every outcome other than Allow is ErrNotFound: a denied resource and an
// absent resource share one code path and one response shape, so the
// existence of another user's resources cannot be probed.
type AuthzService struct {
	projects projectOwnerResolver
	issues   issueOwnerResolver
	comments commentOwnerResolver
}

// NewAuthzService constructs the ownership guard.
func NewAuthzService(projects projectOwnerResolver, issues issueOwnerResolver, comments commentOwnerResolver) *AuthzService {
	return &AuthzService{projects: projects, issues: issues, comments: comments}
}

// ProjectOwned allows userID access to the project.
func (s *AuthzService) ProjectOwned(ctx context.Context, userID, projectID int64) error {
	ownerID, err := s.projects.OwnerOf(ctx, projectID)
	return allowOwner(userID, ownerID, err)
}

// IssueOwned allows userID access to the issue via its parent project.
func (s *AuthzService) IssueOwned(ctx context.Context, userID, issueID int64) error {
	ownerID, err := s.issues.ProjectOwnerOf(ctx, issueID)
	return allowOwner(userID, ownerID, err)
}

// CommentOwned allows userID access to the comment via its enclosing
// project.
func (s *AuthzService) CommentOwned(ctx context.Context, userID, commentID int64) error {
	ownerID, err := s.comments.ProjectOwnerOf(ctx, commentID)
	return allowOwner(userID, ownerID, err)
}

func allowOwner(userID, ownerID int64, err error) error {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve ownership")
	}
	if ownerID != userID {
		return appErrors.Clone(appErrors.ErrNotFound, "")
	}
	return nil
}
