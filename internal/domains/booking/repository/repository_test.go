package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"guesthouse/infras/otel/mocks"
	"guesthouse/infras/postgres"
	"guesthouse/internal/domains/booking/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (repository.Booking, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	conn := &postgres.Connection{
		Read:  sqlx.NewDb(db, "postgres"),
		Write: sqlx.NewDb(db, "postgres"),
	}

	return repository.New(conn, mocks.NewOtel()), mock
}

func TestHasOverlap(t *testing.T) {
	checkIn := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	t.Run("new booking", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectPrepare(regexp.QuoteMeta(
			"SELECT EXISTS(SELECT 1 FROM bookings  WHERE (bookings.room_id = $1 AND (bookings.check_in < $2 AND bookings.check_out > $3)) )",
		)).ExpectQuery().
			WithArgs("room-1", checkOut, checkIn).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		taken, err := repo.HasOverlap(context.Background(), "room-1", checkIn, checkOut, "")
		require.NoError(t, err)
		assert.True(t, taken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update leaves itself out", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectPrepare(regexp.QuoteMeta("AND bookings.id != $4)")).ExpectQuery().
			WithArgs("room-1", checkOut, checkIn, "b-9").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		taken, err := repo.HasOverlap(context.Background(), "room-1", checkIn, checkOut, "b-9")
		require.NoError(t, err)
		assert.False(t, taken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
