package models

import "time"

// AuditAction identifies the recorded authentication event.
type AuditAction string

const (
	AuditActionRegister AuditAction = "REGISTER"
	AuditActionLogin    AuditAction = "LOGIN"
	AuditActionRefresh  AuditAction = "REFRESH"
	AuditActionLogout   AuditAction = "LOGOUT"
)

// AuditLog records an authentication event. Writes are best effort; a failed
// audit insert never fails the operation it describes.
type AuditLog struct {
	ID        string      `db:"id" json:"id"`
	UserID    *int64      `db:"user_id" json:"user_id,omitempty"`
	Action    AuditAction `db:"action" json:"action"`
	IPAddress string      `db:"ip_address" json:"ip_address"`
	UserAgent string      `db:"user_agent" json:"user_agent"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}
