// Package models defines the server-side records persisted by the
// repositories.
package models

import "time"

// User is an account. PasswordHash holds PasswordHasher output, never the
// raw password.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
