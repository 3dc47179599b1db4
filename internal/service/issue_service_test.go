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

type mockIssueRepo struct {
	issues map[int64]*models.Issue
	owners map[int64]int64
	nextID int64
}

func (m *mockIssueRepo) Create(ctx context.Context, issue *models.Issue) error {
	if m.issues == nil {
		m.issues = make(map[int64]*models.Issue)
	}
	m.nextID++
	issue.ID = m.nextID
	if issue.Status == "" {
		issue.Status = "open"
	}
	copied := *issue
	m.issues[issue.ID] = &copied
	return nil
}

func (m *mockIssueRepo) ListByProject(ctx context.Context, projectID int64, filter models.IssueFilter) ([]models.Issue, error) {
	result := []models.Issue{}
	for _, i := range m.issues {
		if i.ProjectID != projectID {
			continue
		}
		if filter.Status != "" && i.Status != filter.Status {
			continue
		}
		result = append(result, *i)
	}
	return result, nil
}

func (m *mockIssueRepo) GetForOwner(ctx context.Context, id, ownerID int64) (*models.Issue, error) {
	i, ok := m.issues[id]
	if !ok || m.owners[i.ProjectID] != ownerID {
		return nil, sql.ErrNoRows
	}
	copied := *i
	return &copied, nil
}

func (m *mockIssueRepo) UpdateForOwner(ctx context.Context, id, ownerID int64, patch models.UpdateIssueRequest) (*models.Issue, error) {
	i, ok := m.issues[id]
	if !ok || m.owners[i.ProjectID] != ownerID {
		return nil, sql.ErrNoRows
	}
	if patch.Title != nil {
		i.Title = *patch.Title
	}
	if patch.Status != nil {
		i.Status = *patch.Status
	}
	copied := *i
	return &copied, nil
}

func (m *mockIssueRepo) DeleteForOwner(ctx context.Context, id, ownerID int64) error {
	i, ok := m.issues[id]
	if !ok || m.owners[i.ProjectID] != ownerID {
		return sql.ErrNoRows
	}
	delete(m.issues, id)
	return nil
}

func testIssueService(owners map[int64]int64) (*IssueService, *mockIssueRepo) {
	repo := &mockIssueRepo{owners: owners}
	resolver := &mockOwnerResolver{owners: owners}
	guard := NewAuthzService(resolver, resolver, resolver)
	return NewIssueService(repo, guard, nil, nil), repo
}

func TestIssueServiceCreate(t *testing.T) {
	svc, _ := testIssueService(map[int64]int64{10: 1})

	issue, err := svc.Create(context.Background(), 1, models.CreateIssueRequest{ProjectID: 10, Title: "fix login"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), issue.CreatorID)
	assert.Equal(t, "open", issue.Status)
}

func TestIssueServiceCreateInForeignProject(t *testing.T) {
	svc, repo := testIssueService(map[int64]int64{10: 1})

	_, err := svc.Create(context.Background(), 2, models.CreateIssueRequest{ProjectID: 10, Title: "sneaky"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.issues)
}

func TestIssueServiceListForeignProject(t *testing.T) {
	svc, _ := testIssueService(map[int64]int64{10: 1})

	_, err := svc.ListByProject(context.Background(), 2, 10, models.IssueFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestIssueServiceListFiltered(t *testing.T) {
	svc, _ := testIssueService(map[int64]int64{10: 1})

	_, err := svc.Create(context.Background(), 1, models.CreateIssueRequest{ProjectID: 10, Title: "open one"})
	require.NoError(t, err)
	done := "done"
	issue, err := svc.Create(context.Background(), 1, models.CreateIssueRequest{ProjectID: 10, Title: "done one"})
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), 1, issue.ID, models.UpdateIssueRequest{Status: &done})
	require.NoError(t, err)

	issues, err := svc.ListByProject(context.Background(), 1, 10, models.IssueFilter{Status: "done"})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "done one", issues[0].Title)
}

func TestIssueServiceUpdateInvalidStatus(t *testing.T) {
	svc, _ := testIssueService(map[int64]int64{10: 1})

	issue, err := svc.Create(context.Background(), 1, models.CreateIssueRequest{ProjectID: 10, Title: "fix login"})
	require.NoError(t, err)

	bad := "abandoned"
	_, err = svc.Update(context.Background(), 1, issue.ID, models.UpdateIssueRequest{Status: &bad})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestIssueServiceDeleteForeign(t *testing.T) {
	svc, _ := testIssueService(map[int64]int64{10: 1})

	issue, err := svc.Create(context.Background(), 1, models.CreateIssueRequest{ProjectID: 10, Title: "fix login"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), 2, issue.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(context.Background(), 1, issue.ID))
}
