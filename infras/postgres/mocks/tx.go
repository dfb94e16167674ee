package mocks

import (
	"context"

	"guesthouse/infras/postgres"
)

// Transactor runs the unit of work directly and records how often it was asked to.
type Transactor struct {
	Calls int
}

func NewTransactor() *Transactor {
	return &Transactor{}
}

// WithTx implements postgres.Transactor.
func (t *Transactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.Calls++

	return fn(ctx)
}

var _ postgres.Transactor = (*Transactor)(nil)
