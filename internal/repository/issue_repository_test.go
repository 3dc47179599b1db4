package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devpulse/tracker-api/internal/models"
)

func issueColumns() []string {
	return []string{"id", "project_id", "creator_id", "title", "description", "status", "priority", "due_date", "created_at", "updated_at"}
}

func TestIssueCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIssueRepository(db)

	mock.ExpectQuery("INSERT INTO issues").
		WithArgs(int64(4), int64(1), "fix login", nil, "open", 0, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	issue := &models.Issue{ProjectID: 4, CreatorID: 1, Title: "fix login"}
	require.NoError(t, repo.Create(context.Background(), issue))
	assert.Equal(t, int64(11), issue.ID)
	assert.Equal(t, "open", issue.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueListByProjectWithFilter(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIssueRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(issueColumns()).
		AddRow(int64(11), int64(4), int64(1), "fix login", nil, "open", 1, nil, now, now)
	mock.ExpectQuery("SELECT id, project_id, creator_id").
		WithArgs(int64(4), "open", "%login%").
		WillReturnRows(rows)

	issues, err := repo.ListByProject(context.Background(), 4, models.IssueFilter{Status: "open", Search: "Login"})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "fix login", issues[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueGetForOwnerForeign(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIssueRepository(db)

	mock.ExpectQuery("SELECT i.id, i.project_id").
		WithArgs(int64(11), int64(2)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetForOwner(context.Background(), 11, 2)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueUpdateForOwner(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIssueRepository(db)

	status := "done"
	now := time.Now()
	rows := sqlmock.NewRows(issueColumns()).
		AddRow(int64(11), int64(4), int64(1), "fix login", nil, "done", 1, nil, now, now)
	mock.ExpectQuery("UPDATE issues SET").
		WithArgs(int64(11), int64(1), nil, nil, &status, nil, nil, sqlmock.AnyArg()).
		WillReturnRows(rows)

	issue, err := repo.UpdateForOwner(context.Background(), 11, 1, models.UpdateIssueRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "done", issue.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueDeleteForOwnerMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIssueRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM issues WHERE id = $1")).
		WithArgs(int64(11), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteForOwner(context.Background(), 11, 2)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueProjectOwnerOf(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIssueRepository(db)

	mock.ExpectQuery("SELECT p.owner_id FROM issues i").
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(int64(1)))

	ownerID, err := repo.ProjectOwnerOf(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ownerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
