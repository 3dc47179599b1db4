package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/devpulse/tracker-api/pkg/errors"
)

type mockOwnerResolver struct {
	owners map[int64]int64
}

func (m *mockOwnerResolver) OwnerOf(ctx context.Context, id int64) (int64, error) {
	return m.resolve(id)
}

func (m *mockOwnerResolver) ProjectOwnerOf(ctx context.Context, id int64) (int64, error) {
	return m.resolve(id)
}

func (m *mockOwnerResolver) resolve(id int64) (int64, error) {
	ownerID, ok := m.owners[id]
	if !ok {
		return 0, sql.ErrNoRows
	}
	return ownerID, nil
}

func TestAuthzAllow(t *testing.T) {
	resolver := &mockOwnerResolver{owners: map[int64]int64{10: 1}}
	guard := NewAuthzService(resolver, resolver, resolver)

	assert.NoError(t, guard.ProjectOwned(context.Background(), 1, 10))
	assert.NoError(t, guard.IssueOwned(context.Background(), 1, 10))
	assert.NoError(t, guard.CommentOwned(context.Background(), 1, 10))
}

func TestAuthzDenyMatchesAbsent(t *testing.T) {
	resolver := &mockOwnerResolver{owners: map[int64]int64{10: 1}}
	guard := NewAuthzService(resolver, resolver, resolver)

	deniedErr := guard.ProjectOwned(context.Background(), 2, 10)
	absentErr := guard.ProjectOwned(context.Background(), 2, 99)
	require.Error(t, deniedErr)
	require.Error(t, absentErr)

	// A foreign resource and a missing one must be indistinguishable.
	denied := appErrors.FromError(deniedErr)
	absent := appErrors.FromError(absentErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, denied.Code)
	assert.Equal(t, denied.Code, absent.Code)
	assert.Equal(t, denied.Message, absent.Message)
	assert.Equal(t, denied.Status, absent.Status)
}

func TestAuthzIssueInheritsProjectOwner(t *testing.T) {
	projects := &mockOwnerResolver{owners: map[int64]int64{}}
	issues := &mockOwnerResolver{owners: map[int64]int64{11: 1}}
	guard := NewAuthzService(projects, issues, issues)

	assert.NoError(t, guard.IssueOwned(context.Background(), 1, 11))

	err := guard.IssueOwned(context.Background(), 2, 11)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
