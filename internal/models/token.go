package models

import "time"

// RefreshToken represents one live session row in the refresh_tokens table.
// Rotation replaces the row wholesale, so presence implies the token has
// never been used for a refresh.
type RefreshToken struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Token     string    `db:"token" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
