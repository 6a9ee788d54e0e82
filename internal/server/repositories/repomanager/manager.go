// Package repomanager vends repositories bound to a database handle and runs
// schema migrations for the configured dialect.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/vtnhan03/final-be/internal/dbx"
	"github.com/vtnhan03/final-be/internal/server/repositories/resettokens"
	"github.com/vtnhan03/final-be/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to either the pool or a
// transaction, so services can compose them inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	ResetTokens(db dbx.DBTX) resettokens.Repository
}
