// Package todos persists todo items for their owners.
package todos

import (
	"context"

	"github.com/sameershelar/toodo/internal/server/models"
)

type Repository interface {
	// Save upserts todo by ID. Updating a todo that belongs to another
	// owner yields common.ErrorForbidden.
	Save(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	// FindByID returns common.ErrorNotFound when id is unknown.
	FindByID(ctx context.Context, id string) (*models.Todo, error)
	// ListByOwner returns the owner's todos, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Todo, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id string) (bool, error)
}
