package dto_test

import (
	"strings"
	"testing"

	"guesthouse/internal/domains/attendance/model/dto"
	"guesthouse/shared/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanRequest_Badge(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "code", body: `{"code":"EMP-000123"}`, want: "EMP-000123"},
		{name: "token from mobile scanner", body: `{"token":"STAFF-EMP-000123"}`, want: "STAFF-EMP-000123"},
		{name: "code wins over token", body: `{"code":"EMP-1","token":"EMP-2"}`, want: "EMP-1"},
		{name: "blank code falls back to token", body: `{"code":"   ","token":" EMP-2 "}`, want: "EMP-2"},
		{name: "neither", body: `{}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req dto.ScanRequest

			require.NoError(t, validator.Validate(strings.NewReader(tt.body), &req))
			assert.Equal(t, tt.want, req.Badge())
		})
	}
}

func TestScanRequest_TooLong(t *testing.T) {
	body := `{"token":"` + strings.Repeat("x", 101) + `"}`

	assert.Error(t, validator.Validate(strings.NewReader(body), &dto.ScanRequest{}))
}
