package todos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sameershelar/toodo/internal/common"
	"github.com/sameershelar/toodo/internal/dbx"
	"github.com/sameershelar/toodo/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Save relies on the conflict clause's WHERE: an update of someone else's
// row returns no row at all.
func (r *PostgresRepository) Save(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	query := `
		INSERT INTO todos (id, owner_id, title, is_complete, color)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
			SET title = EXCLUDED.title, is_complete = EXCLUDED.is_complete, color = EXCLUDED.color
			WHERE todos.owner_id = EXCLUDED.owner_id
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, todo.ID, todo.OwnerID, todo.Title, todo.IsComplete, todo.Color).
		Scan(&todo.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorForbidden
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return todo, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Todo, error) {
	query := `
		SELECT id, owner_id, title, is_complete, color, created_at
		FROM todos
		WHERE id = $1
	`
	t := &models.Todo{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&t.ID, &t.OwnerID, &t.Title, &t.IsComplete, &t.Color, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Todo, error) {
	query := `
		SELECT id, owner_id, title, is_complete, color, created_at
		FROM todos
		WHERE owner_id = $1
		ORDER BY created_at DESC, id
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Todo, 0)
	for rows.Next() {
		t := &models.Todo{}
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.IsComplete, &t.Color, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
