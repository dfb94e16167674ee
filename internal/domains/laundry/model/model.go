package model

import (
	"guesthouse/shared/model"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "laundry"
	EntityName = "laundry"

	FieldID      = "id"
	FieldGuestID = "guest_id"
	FieldItems   = "items"
	FieldStatus  = "status"
	FieldPrice   = "price"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

type Laundry struct {
	ID      string          `db:"id"`
	GuestID string          `db:"guest_id"`
	Items   string          `db:"items"`
	Status  string          `db:"status"`
	Price   decimal.Decimal `db:"price"`

	GuestName     string  `db:"guest_name"     table:"guests"   column:"name"`
	GuestPhone    string  `db:"guest_phone"    table:"guests"   column:"phone"`
	PaymentID     *string `db:"payment_id"     table:"payments" column:"id"`
	PaymentStatus *string `db:"payment_status" table:"payments" column:"status"`

	model.Metadata
}

func (Laundry) GetJoinQuery() string {
	return "JOIN guests ON guests.id = laundry.guest_id " +
		"LEFT JOIN payments ON payments.laundry_id = laundry.id"
}
