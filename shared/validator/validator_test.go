package validator_test

import (
	"net/http"
	"strings"
	"testing"

	"guesthouse/shared/failure"
	"guesthouse/shared/validator"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type guestRequest struct {
	Name  string `json:"name"            validate:"required,min=1,max=100"`
	Phone string `json:"phone"           validate:"required,min=3,max=30"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Kind  string `json:"kind"            validate:"omitempty,oneof=walk_in online"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		data    guestRequest
		wantMsg string
	}{
		{name: "valid", data: guestRequest{Name: "Amina", Phone: "+255700000000"}},
		{name: "missing name", data: guestRequest{Phone: "+255700000000"}, wantMsg: "name is required"},
		{name: "short phone", data: guestRequest{Name: "Amina", Phone: "12"}, wantMsg: "phone must be at least 3"},
		{name: "bad email", data: guestRequest{Name: "Amina", Phone: "123", Email: "nope"}, wantMsg: "email must be a valid email address"},
		{name: "unknown kind", data: guestRequest{Name: "Amina", Phone: "123", Kind: "vip"}, wantMsg: "kind must be one of walk_in online"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.data)

			if tt.wantMsg == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
		})
	}
}

func TestValidate_DecodesBody(t *testing.T) {
	var req guestRequest

	err := validator.Validate(strings.NewReader(`{"name":"Amina","phone":"123"}`), &req)
	require.NoError(t, err)
	assert.Equal(t, "Amina", req.Name)

	err = validator.Validate(strings.NewReader(`{"name":`), &req)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	assert.Contains(t, err.Error(), "failed to decode request body")

	err = validator.Validate(strings.NewReader(`{"phone":"123"}`), &guestRequest{})
	assert.EqualError(t, err, "name is required")
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, validator.ValidateVar("3f2b9c4e-8a1d-4e6f-9b2a-7c5d1e0f3a4b", "uuid"))
	assert.Error(t, validator.ValidateVar("room-101", "uuid"))
	assert.Error(t, validator.ValidateVar("", "required"))
	assert.NoError(t, validator.ValidateVar(5, "gte=1,lte=31"))
	assert.Error(t, validator.ValidateVar(40, "gte=1,lte=31"))
}

type stayRequest struct {
	CheckIn  string `json:"checkIn"  validate:"required,daytime"`
	CheckOut string `json:"checkOut" validate:"omitempty,daytime"`
}

func TestDayTimeValidation(t *testing.T) {
	tests := []struct {
		name    string
		data    stayRequest
		wantErr bool
	}{
		{name: "calendar date", data: stayRequest{CheckIn: "2025-03-01"}},
		{name: "rfc3339", data: stayRequest{CheckIn: "2025-03-01T14:00:00+03:00", CheckOut: "2025-03-02T10:00:00Z"}},
		{name: "missing", data: stayRequest{}, wantErr: true},
		{name: "garbage", data: stayRequest{CheckIn: "tomorrow"}, wantErr: true},
		{name: "day first", data: stayRequest{CheckIn: "01/03/2025"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.data)
			assert.Equal(t, tt.wantErr, err != nil, "error: %v", err)
		})
	}

	err := validator.ValidateStruct(&stayRequest{CheckIn: "soon"})
	assert.EqualError(t, err, "checkIn must be a date (YYYY-MM-DD) or an RFC3339 datetime")
}

type chargeRequest struct {
	Price  decimal.Decimal  `json:"price"  validate:"gte=500,money"`
	Amount *decimal.Decimal `json:"amount" validate:"omitempty,gt=0,money"`
}

func TestDecimalValidation(t *testing.T) {
	amount := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)

		return &d
	}

	tests := []struct {
		name    string
		data    chargeRequest
		wantMsg string
	}{
		{name: "price at bound", data: chargeRequest{Price: decimal.NewFromInt(500)}},
		{name: "cents", data: chargeRequest{Price: decimal.RequireFromString("1500.99"), Amount: amount("0.29")}},
		{name: "price below bound", data: chargeRequest{Price: decimal.NewFromInt(499)}, wantMsg: "price must be greater than or equal to 500"},
		{name: "fractional cents", data: chargeRequest{Price: decimal.RequireFromString("600.005")}, wantMsg: "price must have at most two decimal places"},
		{name: "zero amount", data: chargeRequest{Price: decimal.NewFromInt(600), Amount: amount("0")}, wantMsg: "amount must be greater than 0"},
		{name: "fractional amount", data: chargeRequest{Price: decimal.NewFromInt(600), Amount: amount("10.001")}, wantMsg: "amount must have at most two decimal places"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.data)

			if tt.wantMsg == "" {
				assert.NoError(t, err)

				return
			}

			assert.EqualError(t, err, tt.wantMsg)
		})
	}
}
