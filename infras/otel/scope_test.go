package otel_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"guesthouse/infras/otel"
	"guesthouse/shared/failure"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func record(t *testing.T, fn func(otel.Scope)) sdktrace.ReadOnlySpan {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := provider.Tracer("test").Start(context.Background(), "op")
	scope := otel.NewScope(span)
	fn(scope)
	scope.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	return spans[0]
}

func attr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}

	return attribute.Value{}, false
}

func TestTraceError_ServerFailure(t *testing.T) {
	span := record(t, func(s otel.Scope) {
		s.TraceIfError(errors.New("connection reset"))
	})

	assert.Equal(t, codes.Error, span.Status().Code)

	code, ok := attr(span, "error.code")
	require.True(t, ok)
	assert.Equal(t, int64(500), code.AsInt64())
}

func TestTraceError_ClientRejection(t *testing.T) {
	span := record(t, func(s otel.Scope) {
		s.TraceIfError(failure.Conflict("Room is already booked for the selected dates"))
	})

	assert.Equal(t, codes.Unset, span.Status().Code)
	require.Len(t, span.Events(), 1)
	assert.Equal(t, "rejected", span.Events()[0].Name)
}

func TestTraceIfError_Nil(t *testing.T) {
	span := record(t, func(s otel.Scope) {
		s.TraceIfError(nil)
	})

	assert.Equal(t, codes.Unset, span.Status().Code)
	assert.Empty(t, span.Events())
}

func TestSetAttributes(t *testing.T) {
	at := time.Date(2025, 3, 1, 14, 0, 0, 0, time.FixedZone("UTC+03:00", 3*3600))

	span := record(t, func(s otel.Scope) {
		s.SetAttributes(map[string]any{
			"room.number":      "101",
			"booking.nights":   3,
			"booking.total":    decimal.RequireFromString("4500.50"),
			"booking.check_in": at,
			"inventory.low":    true,
		})
	})

	nights, _ := attr(span, "booking.nights")
	assert.Equal(t, int64(3), nights.AsInt64())

	total, _ := attr(span, "booking.total")
	assert.Equal(t, "4500.5", total.AsString())

	checkIn, _ := attr(span, "booking.check_in")
	assert.Equal(t, "2025-03-01T11:00:00Z", checkIn.AsString())

	low, _ := attr(span, "inventory.low")
	assert.True(t, low.AsBool())
}
