package postgres_test

import (
	"context"
	"errors"
	"testing"

	"guesthouse/infras/otel/mocks"
	"guesthouse/infras/postgres"
	"guesthouse/shared/failure"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTransactor(t *testing.T) (postgres.Transactor, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	conn := &postgres.Connection{
		Read:  sqlx.NewDb(db, "postgres"),
		Write: sqlx.NewDb(db, "postgres"),
	}

	return postgres.NewTransactor(conn, mocks.NewOtel()), mock
}

func TestWithTx_Commit(t *testing.T) {
	tx, mock := newTransactor(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE rooms").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := tx.WithTx(context.Background(), func(ctx context.Context) error {
		sqlTx, ok := postgres.TxFromContext(ctx)
		require.True(t, ok)

		_, err := sqlTx.ExecContext(ctx, "UPDATE rooms SET price = 1")

		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackOnError(t *testing.T) {
	tx, mock := newTransactor(t)
	errBoom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := tx.WithTx(context.Background(), func(_ context.Context) error {
		return errBoom
	})

	assert.ErrorIs(t, err, errBoom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_NestedJoinsOuter(t *testing.T) {
	tx, mock := newTransactor(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := tx.WithTx(context.Background(), func(ctx context.Context) error {
		outer, _ := postgres.TxFromContext(ctx)

		return tx.WithTx(ctx, func(inner context.Context) error {
			joined, ok := postgres.TxFromContext(inner)
			assert.True(t, ok)
			assert.Same(t, outer, joined)

			return nil
		})
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RetriesSerializationFailure(t *testing.T) {
	tx, mock := newTransactor(t)
	serialization := &pq.Error{Code: "40001"}

	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	attempts := 0
	err := tx.WithTx(context.Background(), func(_ context.Context) error {
		attempts++
		if attempts == 1 {
			return serialization
		}

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_ExhaustedRetriesBecomeConflict(t *testing.T) {
	tx, mock := newTransactor(t)

	for range 3 {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	attempts := 0
	err := tx.WithTx(context.Background(), func(_ context.Context) error {
		attempts++

		return &pq.Error{Code: "40P01"}
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.True(t, failure.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
