package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devpulse/tracker-api/internal/models"
	appErrors "github.com/devpulse/tracker-api/pkg/errors"
)

type mockCommentRepo struct {
	comments map[int64]*models.Comment
	owners   map[int64]int64
	nextID   int64
}

func (m *mockCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	if m.comments == nil {
		m.comments = make(map[int64]*models.Comment)
	}
	m.nextID++
	comment.ID = m.nextID
	copied := *comment
	m.comments[comment.ID] = &copied
	return nil
}

func (m *mockCommentRepo) ListByIssue(ctx context.Context, issueID int64) ([]models.Comment, error) {
	result := []models.Comment{}
	for _, c := range m.comments {
		if c.IssueID == issueID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCommentRepo) DeleteForOwner(ctx context.Context, id, ownerID int64) error {
	c, ok := m.comments[id]
	if !ok || m.owners[c.IssueID] != ownerID {
		return sql.ErrNoRows
	}
	delete(m.comments, id)
	return nil
}

func testCommentService(issueOwners map[int64]int64) (*CommentService, *mockCommentRepo) {
	repo := &mockCommentRepo{owners: issueOwners}
	resolver := &mockOwnerResolver{owners: issueOwners}
	guard := NewAuthzService(resolver, resolver, resolver)
	return NewCommentService(repo, guard, nil, nil), repo
}

func TestCommentServiceCreate(t *testing.T) {
	svc, _ := testCommentService(map[int64]int64{11: 1})

	comment, err := svc.Create(context.Background(), 1, 11, models.CreateCommentRequest{Content: "looks good"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), comment.AuthorID)
	assert.Equal(t, int64(11), comment.IssueID)
}

func TestCommentServiceCreateOnForeignIssue(t *testing.T) {
	svc, repo := testCommentService(map[int64]int64{11: 1})

	_, err := svc.Create(context.Background(), 2, 11, models.CreateCommentRequest{Content: "sneaky"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.comments)
}

func TestCommentServiceCreateEmptyContent(t *testing.T) {
	svc, _ := testCommentService(map[int64]int64{11: 1})

	_, err := svc.Create(context.Background(), 1, 11, models.CreateCommentRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCommentServiceListForeignIssue(t *testing.T) {
	svc, _ := testCommentService(map[int64]int64{11: 1})

	_, err := svc.ListByIssue(context.Background(), 2, 11)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCommentServiceDelete(t *testing.T) {
	svc, _ := testCommentService(map[int64]int64{11: 1})

	comment, err := svc.Create(context.Background(), 1, 11, models.CreateCommentRequest{Content: "temp"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), 2, comment.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(context.Background(), 1, comment.ID))
}
