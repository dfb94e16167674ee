package dto

import (
	"time"

	"guesthouse/internal/domains/booking/model"
	"guesthouse/shared"
	"guesthouse/shared/calendar"
	"guesthouse/shared/constant"
	gDto "guesthouse/shared/dto"
	gModel "guesthouse/shared/model"
	"guesthouse/shared/timezone"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateBookingRequest struct {
	GuestID  string `json:"guestId"  validate:"required,uuid"`
	RoomID   string `json:"roomId"   validate:"required,uuid"`
	CheckIn  string `json:"checkIn"  validate:"required,daytime"`
	CheckOut string `json:"checkOut" validate:"required,daytime"`
}

func (c *CreateBookingRequest) ToModel(user string, checkIn, checkOut time.Time) model.Booking {
	return model.Booking{
		ID:       uuid.NewString(),
		GuestID:  c.GuestID,
		RoomID:   c.RoomID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Metadata: gModel.NewMetadata(user),
	}
}

// UpdateBookingRequest is a patch: empty fields keep their stored value.
type UpdateBookingRequest struct {
	GuestID  string `json:"guestId"  validate:"omitempty,uuid"`
	RoomID   string `json:"roomId"   validate:"omitempty,uuid"`
	CheckIn  string `json:"checkIn"  validate:"omitempty,daytime"`
	CheckOut string `json:"checkOut" validate:"omitempty,daytime"`
}

type GuestSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type RoomSummary struct {
	ID     string          `json:"id"`
	Number string          `json:"number"`
	Type   string          `json:"type"`
	Price  decimal.Decimal `json:"price"`
}

type PaymentSummary struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

type BookingResponse struct {
	ID        string          `json:"id"`
	GuestID   string          `json:"guestId"`
	RoomID    string          `json:"roomId"`
	CheckIn   string          `json:"checkIn"`
	CheckOut  string          `json:"checkOut"`
	Nights    int             `json:"nights"`
	AmountDue decimal.Decimal `json:"amountDue"`
	Guest     GuestSummary    `json:"guest"`
	Room      RoomSummary     `json:"room"`
	Payment   *PaymentSummary `json:"payment"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.GuestID = model.GuestID
	r.RoomID = model.RoomID
	r.CheckIn = timezone.Format(model.CheckIn, constant.DateFormat)
	r.CheckOut = timezone.Format(model.CheckOut, constant.DateFormat)
	r.Nights = calendar.NightCount(model.CheckIn, model.CheckOut)
	r.AmountDue = model.RoomPrice.Mul(decimal.NewFromInt(int64(r.Nights)))
	r.Guest = GuestSummary{ID: model.GuestID, Name: model.GuestName, Phone: model.GuestPhone}
	r.Room = RoomSummary{ID: model.RoomID, Number: model.RoomNumber, Type: model.RoomType, Price: model.RoomPrice}

	if model.PaymentID != nil {
		r.Payment = &PaymentSummary{
			ID:     *model.PaymentID,
			Status: deref(model.PaymentStatus),
			Method: deref(model.PaymentMethod),
			Amount: model.PaymentAmount.Decimal,
		}
	}

	r.Metadata.FromModel(model.Metadata)
}

func deref(value *string) string {
	if value == nil {
		return ""
	}

	return *value
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}
