package transactor

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWithinTransaction(t *testing.T) {
	t.Run("commits when fn succeeds", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		tr := NewSQLTransactor(db, zap.NewNop())
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE appointments").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = tr.WithinTransaction(context.Background(), func(ctx context.Context) error {
			_, err := tr.Executor(ctx).ExecContext(ctx, "UPDATE appointments SET status = 'Scheduled'")
			return err
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		tr := NewSQLTransactor(db, zap.NewNop())
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("slot taken")
		err = tr.WithinTransaction(context.Background(), func(ctx context.Context) error {
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested call joins the outer transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		tr := NewSQLTransactor(db, zap.NewNop())
		mock.ExpectBegin()
		mock.ExpectCommit()

		err = tr.WithinTransaction(context.Background(), func(ctx context.Context) error {
			return tr.WithinTransaction(ctx, func(inner context.Context) error {
				assert.Equal(t, tr.Executor(ctx), tr.Executor(inner))
				return nil
			})
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("executor outside transaction is the pool", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		tr := NewSQLTransactor(db, zap.NewNop())
		assert.Equal(t, db, tr.Executor(context.Background()))
	})
}
