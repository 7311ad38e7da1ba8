package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sameershelar/toodo/internal/common"
	"github.com/sameershelar/toodo/internal/dbx"
	"github.com/sameershelar/toodo/internal/server/models"
)

// PostgresRepository implements Repository and Purger over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, now: time.Now}
}

func (r *PostgresRepository) Save(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, userID, tokenHash, expiresAt); err != nil {
		if dbx.IsUniqueViolation(err, "") {
			return fmt.Errorf("refresh token %w", common.ErrorAlreadyExists)
		}
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

// Find re-checks expires_at so that rows the purger has not reached yet
// are still treated as absent.
func (r *PostgresRepository) Find(ctx context.Context, userID, tokenHash string) (*models.RefreshToken, error) {
	query := `
		SELECT user_id, token_hash, expires_at, created_at
		FROM refresh_tokens
		WHERE user_id = $1 AND token_hash = $2 AND expires_at > $3
	`
	t := &models.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, userID, tokenHash, r.now()).
		Scan(&t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, tokenHash string) (bool, error) {
	query := `
		DELETE FROM refresh_tokens
		WHERE user_id = $1 AND token_hash = $2
	`
	res, err := r.db.ExecContext(ctx, query, userID, tokenHash)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM refresh_tokens
		WHERE expires_at <= $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
