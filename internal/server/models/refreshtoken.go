package models

import "time"

// RefreshToken is the server-side record of an issued refresh token. Only
// the token digest is stored; the raw token lives with the client.
type RefreshToken struct {
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the record is no longer usable at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
