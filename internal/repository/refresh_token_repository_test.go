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

func TestRefreshTokenCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRefreshTokenRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO refresh_tokens (user_id, token, expires_at, created_at) VALUES ($1, $2, $3, $4) RETURNING id")).
		WithArgs(int64(1), "tok", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	token := &models.RefreshToken{UserID: 1, Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Create(context.Background(), token))
	assert.Equal(t, int64(3), token.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenFindValid(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRefreshTokenRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "created_at"}).
		AddRow(int64(3), int64(1), "tok", now.Add(time.Hour), now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, token, expires_at, created_at FROM refresh_tokens WHERE token = $1 AND expires_at > $2 LIMIT 1")).
		WithArgs("tok", sqlmock.AnyArg()).
		WillReturnRows(rows)

	rt, err := repo.FindValid(context.Background(), "tok", now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rt.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRotate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRefreshTokenRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM refresh_tokens WHERE token = $1 AND expires_at > $2 RETURNING user_id")).
		WithArgs("old", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(5)))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO refresh_tokens (user_id, token, expires_at, created_at) VALUES ($1, $2, $3, $4) RETURNING id")).
		WithArgs(int64(5), "new", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectCommit()

	replacement := &models.RefreshToken{Token: "new", ExpiresAt: now.Add(time.Hour)}
	userID, err := repo.Rotate(context.Background(), "old", replacement, now)
	require.NoError(t, err)
	assert.Equal(t, int64(5), userID)
	assert.Equal(t, int64(5), replacement.UserID)
	assert.Equal(t, int64(9), replacement.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRotateConsumed(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRefreshTokenRepository(db)

	// The losing side of a concurrent rotation finds no row to consume and
	// must roll back without inserting anything.
	mock.ExpectBegin()
	mock.ExpectQuery("DELETE FROM refresh_tokens").
		WithArgs("spent", sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	replacement := &models.RefreshToken{Token: "new", ExpiresAt: time.Now().Add(time.Hour)}
	_, err := repo.Rotate(context.Background(), "spent", replacement, time.Now())
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRevoke(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRefreshTokenRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM refresh_tokens WHERE token = $1")).
		WithArgs("tok").
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Zero rows affected is still success; revocation is idempotent.
	require.NoError(t, repo.Revoke(context.Background(), "tok"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRevokeAllForUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRefreshTokenRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM refresh_tokens WHERE user_id = $1")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.RevokeAllForUser(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenDeleteExpired(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRefreshTokenRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM refresh_tokens WHERE expires_at <= $1")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 4))

	removed, err := repo.DeleteExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(4), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
