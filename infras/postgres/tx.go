package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"guesthouse/infras/otel"
	"guesthouse/shared/constant"
	"guesthouse/shared/failure"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	txMaxAttempts = 3
	txRetryWait   = 20 * time.Millisecond
)

type txKey struct{}

// Transactor runs a unit of work inside a serializable transaction carried by the context.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type transactorImpl struct {
	db   *sqlx.DB
	otel otel.Otel
}

func NewTransactor(conn *Connection, otel otel.Otel) Transactor {
	return &transactorImpl{
		db:   conn.Write,
		otel: otel,
	}
}

// TxFromContext returns the transaction started by WithTx, if any.
func TxFromContext(ctx context.Context) (*sqlx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sqlx.Tx)

	return tx, ok
}

// WithTx joins the transaction already in ctx, or starts a serializable one and
// retries it when postgres reports a serialization failure or deadlock.
func (t *transactorImpl) WithTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}

	ctx, scope := t.otel.NewScope(ctx, constant.OtelTxScopeName, constant.OtelTxScopeName+".WithTx")
	defer scope.End()
	defer scope.TraceIfError(err)

	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		err = t.run(ctx, fn)
		if err == nil || !failure.IsRetryable(err) {
			break
		}

		scope.SetAttribute("tx.attempt", attempt)
		log.Warn().Err(err).Int("attempt", attempt).Msg("serialization failure, retrying transaction")

		select {
		case <-ctx.Done():
			return fmt.Errorf("transaction cancelled: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * txRetryWait):
		}
	}

	if err != nil && failure.IsRetryable(err) {
		return failure.FromDatabase(err)
	}

	return err
}

func (t *transactorImpl) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := t.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()

			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error().Err(rbErr).Msg("failed to rollback transaction")
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
