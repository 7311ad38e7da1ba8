// Package repomanager vends repositories bound to a database handle, so
// services can run the same repository code on *sql.DB or inside a
// transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/sameershelar/toodo/internal/dbx"
	"github.com/sameershelar/toodo/internal/server/repositories/refreshtokens"
	"github.com/sameershelar/toodo/internal/server/repositories/todos"
	"github.com/sameershelar/toodo/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Todos(db dbx.DBTX) todos.Repository
}
