package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devpulse/tracker-api/internal/models"
)

func commentColumns() []string {
	return []string{"id", "issue_id", "author_id", "author_username", "content", "created_at"}
}

func TestCommentCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCommentRepository(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO comments").
		WithArgs(int64(11), int64(1), "looks good", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(21)))
	mock.ExpectQuery("SELECT c.id, c.issue_id").
		WithArgs(int64(21)).
		WillReturnRows(sqlmock.NewRows(commentColumns()).
			AddRow(int64(21), int64(11), int64(1), "alice", "looks good", now))

	comment := &models.Comment{IssueID: 11, AuthorID: 1, Content: "looks good"}
	require.NoError(t, repo.Create(context.Background(), comment))
	assert.Equal(t, int64(21), comment.ID)
	assert.Equal(t, "alice", comment.AuthorUsername)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentListByIssue(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCommentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(commentColumns()).
		AddRow(int64(21), int64(11), int64(1), "alice", "first", now).
		AddRow(int64(22), int64(11), int64(1), "alice", "second", now.Add(time.Minute))
	mock.ExpectQuery("SELECT c.id, c.issue_id").
		WithArgs(int64(11)).
		WillReturnRows(rows)

	comments, err := repo.ListByIssue(context.Background(), 11)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentProjectOwnerOfMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCommentRepository(db)

	mock.ExpectQuery("SELECT p.owner_id FROM comments c").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.ProjectOwnerOf(context.Background(), 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentDeleteForOwnerForeign(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCommentRepository(db)

	mock.ExpectExec("DELETE FROM comments WHERE").
		WithArgs(int64(21), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteForOwner(context.Background(), 21, 2)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
