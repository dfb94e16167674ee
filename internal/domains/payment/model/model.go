package model

import (
	"guesthouse/shared/model"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "payments"
	EntityName = "payment"

	FieldID          = "id"
	FieldAmount      = "amount"
	FieldMethod      = "method"
	FieldStatus      = "status"
	FieldServiceType = "service_type"
	FieldDescription = "description"
	FieldBookingID   = "booking_id"
	FieldLaundryID   = "laundry_id"
	FieldGuestID     = "guest_id"
)

const (
	StatusPaid     = "paid"
	StatusUnpaid   = "unpaid"
	StatusRefunded = "refunded"
	StatusFailed   = "failed"
)

const (
	MethodCash         = "cash"
	MethodCard         = "card"
	MethodMobile       = "mobile"
	MethodBankTransfer = "bank_transfer"
)

const (
	ServiceRoom    = "ROOM"
	ServiceLaundry = "LAUNDRY"
	ServiceDining  = "DINING"
	ServiceOther   = "OTHER"
)

var (
	Statuses     = []string{StatusPaid, StatusUnpaid, StatusRefunded, StatusFailed}
	ServiceTypes = []string{ServiceRoom, ServiceLaundry, ServiceDining, ServiceOther}
)

type Payment struct {
	ID          string          `db:"id"`
	Amount      decimal.Decimal `db:"amount"`
	Method      string          `db:"method"`
	Status      string          `db:"status"`
	ServiceType string          `db:"service_type"`
	Description *string         `db:"description"`
	BookingID   *string         `db:"booking_id"`
	LaundryID   *string         `db:"laundry_id"`
	GuestID     string          `db:"guest_id"`

	GuestName string `db:"guest_name" table:"guests" column:"name"`

	model.Metadata
}

func (Payment) GetJoinQuery() string {
	return "JOIN guests ON guests.id = payments.guest_id"
}
