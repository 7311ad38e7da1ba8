package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sameershelar/toodo/internal/common"
	"github.com/sameershelar/toodo/internal/dbx"
	"github.com/sameershelar/toodo/internal/server/models"
)

// EmailConstraint is the unique constraint guarding users.email.
const EmailConstraint = "users_email_key"

// PostgresRepository implements Repository over dbx.DBTX, so it can run on
// *sql.DB or inside a transaction.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, user *models.User) (*models.User, error) {
	var err error
	if user.ID == "" {
		query := `
			INSERT INTO users (email, password_hash)
			VALUES ($1, $2)
			RETURNING id, created_at
		`
		err = r.db.QueryRowContext(ctx, query, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
	} else {
		query := `
			INSERT INTO users (id, email, password_hash)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, password_hash = EXCLUDED.password_hash
			RETURNING created_at
		`
		err = r.db.QueryRowContext(ctx, query, user.ID, user.Email, user.PasswordHash).Scan(&user.CreatedAt)
	}
	if err != nil {
		if dbx.IsUniqueViolation(err, EmailConstraint) {
			return nil, fmt.Errorf("email %w", common.ErrorAlreadyExists)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`
	return r.findOne(ctx, query, email)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`
	return r.findOne(ctx, query, id)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}
