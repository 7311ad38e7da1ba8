// Package users declares the credential store: persistence of user
// accounts keyed by id and by unique email.
package users

import (
	"context"

	"github.com/sameershelar/toodo/internal/server/models"
)

type Repository interface {
	// FindByEmail returns common.ErrorNotFound when no user has email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByID returns common.ErrorNotFound when no user has id.
	FindByID(ctx context.Context, id string) (*models.User, error)
	// Save inserts user when its ID is empty (assigning ID and CreatedAt)
	// and updates it otherwise. A duplicate email yields
	// common.ErrorAlreadyExists.
	Save(ctx context.Context, user *models.User) (*models.User, error)
}
