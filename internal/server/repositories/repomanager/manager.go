package repomanager

import (
	"context"
	"database/sql"

	"github.com/expensio/expensio/internal/dbx"
	"github.com/expensio/expensio/internal/server/repositories/expenses"
	"github.com/expensio/expensio/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Expenses(db dbx.DBTX) expenses.Repository
}
