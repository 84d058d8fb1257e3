package persistence

import "time"

// User represents a directory account stored by the service. Events hold
// Person snapshots derived from users; the stored user is the live record.
type User struct {
	ID           string
	Login        string
	Email        string
	FullName     string
	Position     string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents an issued authentication token.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}
