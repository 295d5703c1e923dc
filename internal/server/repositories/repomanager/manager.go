package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/tasktrack/internal/dbx"
	"github.com/dmitrijs2005/tasktrack/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/tasktrack/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to either a pool or a
// transaction, so services can run several of them inside one dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Tasks(db dbx.DBTX) tasks.Repository
}
