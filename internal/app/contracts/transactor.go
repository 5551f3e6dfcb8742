package contracts

import (
	"context"
	"database/sql"
)

// DBExecutor is satisfied by both *sql.DB and *sql.Tx.
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Transactor interface {
	// WithinTransaction commits when fn returns nil and rolls back otherwise.
	// Repositories called with the ctx handed to fn join the transaction.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Executor(ctx context.Context) DBExecutor
}
