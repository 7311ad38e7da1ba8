// Package refreshtokens declares the refresh-token store and its
// PostgreSQL and Redis implementations. Records are keyed by
// (user id, token digest); raw tokens are never stored.
package refreshtokens

import (
	"context"
	"time"

	"github.com/sameershelar/toodo/internal/server/models"
)

type Repository interface {
	// Save records a digest for userID that stops being usable at expiresAt.
	Save(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	// Find returns common.ErrorNotFound when the record is absent or expired.
	Find(ctx context.Context, userID, tokenHash string) (*models.RefreshToken, error)
	// Delete removes the record. It reports whether this call removed it;
	// deleting an absent record is not an error.
	Delete(ctx context.Context, userID, tokenHash string) (bool, error)
}

// Purger is implemented by stores that keep expired records until swept.
type Purger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
