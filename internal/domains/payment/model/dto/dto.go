package dto

import (
	"guesthouse/internal/domains/payment/model"
	"guesthouse/shared"
	"guesthouse/shared/constant"
	gDto "guesthouse/shared/dto"
	gModel "guesthouse/shared/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatePaymentRequest charges one source. ServiceType and Status are normalised by the service
// so legacy casing ("room", "Unpaid") is still accepted.
type CreatePaymentRequest struct {
	ServiceType string           `json:"serviceType" validate:"omitempty,max=20"`
	BookingID   string           `json:"bookingId"   validate:"omitempty,uuid"`
	LaundryID   string           `json:"laundryId"   validate:"omitempty,uuid"`
	GuestID     string           `json:"guestId"     validate:"omitempty,uuid"`
	Amount      *decimal.Decimal `json:"amount"      validate:"omitempty,money"`
	Method      string           `json:"method"      validate:"required,oneof=cash card mobile bank_transfer"`
	Status      string           `json:"status"      validate:"omitempty,max=20"`
	Description string           `json:"description" validate:"omitempty,max=300"`
}

type UpdatePaymentRequest struct {
	Amount      *decimal.Decimal `json:"amount"      validate:"omitempty,gte=0,money"`
	Method      string           `json:"method"      validate:"omitempty,oneof=cash card mobile bank_transfer"`
	Status      string           `json:"status"      validate:"omitempty,max=20"`
	Description *string          `json:"description" validate:"omitempty,max=300"`
}

// Charge is a resolved payment ready to be stored.
type Charge struct {
	ServiceType string
	BookingID   string
	LaundryID   string
	GuestID     string
	Amount      decimal.Decimal
	Method      string
	Status      string
	Description string
}

func (c Charge) ToModel(user string) model.Payment {
	return model.Payment{
		ID:          uuid.NewString(),
		Amount:      c.Amount,
		Method:      c.Method,
		Status:      c.Status,
		ServiceType: c.ServiceType,
		Description: optional(c.Description),
		BookingID:   optional(c.BookingID),
		LaundryID:   optional(c.LaundryID),
		GuestID:     c.GuestID,
		Metadata:    gModel.NewMetadata(user),
	}
}

func optional(value string) *string {
	if value == constant.Empty {
		return nil
	}

	return &value
}

type PaymentResponse struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	Status      string          `json:"status"`
	ServiceType string          `json:"serviceType"`
	Description string          `json:"description,omitempty"`
	BookingID   string          `json:"bookingId,omitempty"`
	LaundryID   string          `json:"laundryId,omitempty"`
	GuestID     string          `json:"guestId"`
	GuestName   string          `json:"guestName,omitempty"`
	gDto.Metadata
}

func (r *PaymentResponse) FromModel(model model.Payment) {
	r.ID = model.ID
	r.Amount = model.Amount
	r.Method = model.Method
	r.Status = model.Status
	r.ServiceType = model.ServiceType
	r.Description = deref(model.Description)
	r.BookingID = deref(model.BookingID)
	r.LaundryID = deref(model.LaundryID)
	r.GuestID = model.GuestID
	r.GuestName = model.GuestName
	r.Metadata.FromModel(model.Metadata)
}

func deref(value *string) string {
	if value == nil {
		return constant.Empty
	}

	return *value
}

type GetPaymentsResponse struct {
	Payments  []PaymentResponse `json:"payments"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetPaymentsResponse) FromModels(models []model.Payment, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Payments = make([]PaymentResponse, len(models))
	for i, mod := range models {
		r.Payments[i].FromModel(mod)
	}
}
