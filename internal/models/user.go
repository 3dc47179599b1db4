package models

import "time"

// User represents an application user stored in the users table.
//
// PasswordHash never serialises; it only crosses the repository and the
// password hasher boundaries.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// UserInfo describes a user in API responses.
type UserInfo struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Info converts the row into its response shape.
func (u *User) Info() UserInfo {
	return UserInfo{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}

// RegisterRequest holds the payload for creating an account.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=1,max=50"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}
