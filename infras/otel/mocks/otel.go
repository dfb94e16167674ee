// Package mocks provides no-op tracing for unit tests.
package mocks

import (
	"context"

	"guesthouse/infras/otel"
)

type otelImpl struct{}

func (o *otelImpl) NewScope(ctx context.Context, _, _ string) (context.Context, otel.Scope) {
	return ctx, NewScope()
}

func (o *otelImpl) Shutdown(context.Context) error {
	return nil
}

func NewOtel() otel.Otel {
	return &otelImpl{}
}
