package transactor

import (
	"context"
	"database/sql"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/pkg/exceptions"

	"go.uber.org/zap"
)

type txKey struct{}

type sqlTransactor struct {
	DB  *sql.DB
	Log *zap.Logger
}

func NewSQLTransactor(db *sql.DB, logger *zap.Logger) contracts.Transactor {
	return &sqlTransactor{
		DB:  db,
		Log: logger,
	}
}

func (t *sqlTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := t.DB.BeginTx(ctx, nil)
	if err != nil {
		return exceptions.ErrPostgresDBBeginTx(err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && rollbackErr != sql.ErrTxDone {
				t.Log.Error("sqlTransactor.WithinTransaction rollback failed", zap.Error(rollbackErr))
			}
		}
	}()

	err = fn(context.WithValue(ctx, txKey{}, tx))
	if err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return exceptions.ErrPostgresDBCommitTx(err)
	}
	return nil
}

func (t *sqlTransactor) Executor(ctx context.Context) contracts.DBExecutor {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return t.DB
}
