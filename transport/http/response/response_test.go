package response_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"guesthouse/shared/failure"
	"guesthouse/transport/http/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestWithJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	response.WithJSON(rec, http.StatusCreated, map[string]string{"number": "101"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, map[string]any{"data": map[string]any{"number": "101"}}, decode(t, rec))
}

func TestWithError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{name: "conflict", err: failure.Conflict("Room is already booked for the selected dates"), code: 409, message: "Room is already booked for the selected dates"},
		{name: "wrapped not found", err: fmt.Errorf("load booking: %w", failure.NotFound("Booking not found")), code: 404, message: "Booking not found"},
		{name: "wrapped storage rejection", err: fmt.Errorf("failed to insert laundry: %w", failure.BadRequestFromString("value violates constraint laundry_price_check")), code: 400, message: "value violates constraint laundry_price_check"},
		{name: "unexpected", err: errors.New("pq: relation \"bookings\" does not exist"), code: 500, message: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			response.WithError(rec, tt.err)

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.message, decode(t, rec)["error"])
		})
	}
}

func TestWithPreparingShutdown(t *testing.T) {
	rec := httptest.NewRecorder()

	response.WithPreparingShutdown(rec)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "close", rec.Header().Get("Connection"))
	assert.Equal(t, "SERVER PREPARING TO SHUT DOWN", decode(t, rec)["message"])
}

type recordingScope struct {
	traced []error
}

func (s *recordingScope) TraceError(err error) {
	s.traced = append(s.traced, err)
}

func TestFail(t *testing.T) {
	rec := httptest.NewRecorder()
	scope := &recordingScope{}
	err := failure.NotFound("Guest not found")

	response.Fail(rec, scope, err, "failed to get guest")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Guest not found", decode(t, rec)["error"])
	assert.Equal(t, []error{err}, scope.traced)
}
