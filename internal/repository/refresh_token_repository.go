package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/devpulse/tracker-api/internal/models"
)

// RefreshTokenRepository persists refresh-token sessions. Token values are
// matched by exact equality only; expiry is enforced at lookup time.
type RefreshTokenRepository struct {
	db *sqlx.DB
}

// NewRefreshTokenRepository creates a new instance of RefreshTokenRepository.
func NewRefreshTokenRepository(db *sqlx.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Create inserts a new session row and fills in the generated id.
func (r *RefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO refresh_tokens (user_id, token, expires_at, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.GetContext(ctx, &token.ID, query, token.UserID, token.Token, token.ExpiresAt, token.CreatedAt); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindValid returns the session for the exact token value if it has not
// expired. An absent or expired row surfaces as sql.ErrNoRows.
func (r *RefreshTokenRepository) FindValid(ctx context.Context, token string, now time.Time) (*models.RefreshToken, error) {
	const query = `SELECT id, user_id, token, expires_at, created_at FROM refresh_tokens WHERE token = $1 AND expires_at > $2 LIMIT 1`
	var rt models.RefreshToken
	if err := r.db.GetContext(ctx, &rt, query, token, now); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &rt, nil
}

// Rotate atomically consumes the presented token and installs its
// replacement. The delete and the insert share one transaction, and the
// delete acquires the row lock, so of two concurrent rotations with the same
// value exactly one commits; the loser observes sql.ErrNoRows and nothing is
// persisted for it.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldToken string, replacement *models.RefreshToken, now time.Time) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("rotate refresh token: begin: %w", err)
	}

	var userID int64
	const consume = `DELETE FROM refresh_tokens WHERE token = $1 AND expires_at > $2 RETURNING user_id`
	if err := tx.GetContext(ctx, &userID, consume, oldToken, now); err != nil {
		tx.Rollback() //nolint:errcheck
		if err == sql.ErrNoRows {
			return 0, err
		}
		return 0, fmt.Errorf("consume refresh token: %w", err)
	}

	replacement.UserID = userID
	if replacement.CreatedAt.IsZero() {
		replacement.CreatedAt = now
	}
	const insert = `INSERT INTO refresh_tokens (user_id, token, expires_at, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := tx.GetContext(ctx, &replacement.ID, insert, replacement.UserID, replacement.Token, replacement.ExpiresAt, replacement.CreatedAt); err != nil {
		tx.Rollback() //nolint:errcheck
		return 0, fmt.Errorf("insert replacement token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("rotate refresh token: commit: %w", err)
	}
	return userID, nil
}

// Revoke deletes the session row for the exact token value. Revoking an
// unknown token is not an error.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	const query = `DELETE FROM refresh_tokens WHERE token = $1`
	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllForUser deletes every session for a user.
func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	const query = `DELETE FROM refresh_tokens WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("revoke user refresh tokens: %w", err)
	}
	return nil
}

// DeleteExpired removes rows past their expiry and reports how many went.
func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM refresh_tokens WHERE expires_at <= $1`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}
