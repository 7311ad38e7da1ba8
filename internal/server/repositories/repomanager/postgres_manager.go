package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sameershelar/toodo/internal/dbx"
	"github.com/sameershelar/toodo/internal/server/migrations"
	"github.com/sameershelar/toodo/internal/server/repositories/refreshtokens"
	"github.com/sameershelar/toodo/internal/server/repositories/todos"
	"github.com/sameershelar/toodo/internal/server/repositories/users"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories. The
// refresh-token store can be swapped for one that does not live in
// PostgreSQL (see WithRefreshTokenStore); such a store ignores the handle
// passed to RefreshTokens.
type PostgresRepositoryManager struct {
	refreshStore refreshtokens.Repository
}

type Option func(*PostgresRepositoryManager)

// WithRefreshTokenStore makes RefreshTokens return store regardless of the
// database handle.
func WithRefreshTokenStore(store refreshtokens.Repository) Option {
	return func(m *PostgresRepositoryManager) { m.refreshStore = store }
}

func NewPostgresRepositoryManager(opts ...Option) *PostgresRepositoryManager {
	m := &PostgresRepositoryManager{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	if m.refreshStore != nil {
		return m.refreshStore
	}
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Todos(db dbx.DBTX) todos.Repository {
	return todos.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded goose migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
