// Package queue defines message payloads exchanged over the message broker
// and the publishers that send them.
package queue

// Queue names
const (
	PasswordResetQueue = "auth.password_reset" // Password reset mail requests
	UserPurgedQueue    = "user.purged"         // Users removed by the purge job
)

// PasswordResetEvent asks a mail worker to deliver a reset link.
type PasswordResetEvent struct {
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	ResetLink   string `json:"reset_link"`
	RequestedAt string `json:"requested_at"`
}

// UserPurgedEvent is published once a user and their records are permanently gone.
type UserPurgedEvent struct {
	UserID          uint   `json:"user_id"`
	AccountsDeleted int64  `json:"accounts_deleted"`
	DeletedAt       string `json:"deleted_at"`
	PurgedAt        string `json:"purged_at"`
}
