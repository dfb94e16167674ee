package model

import (
	"time"

	"guesthouse/shared/model"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID       = "id"
	FieldGuestID  = "guest_id"
	FieldRoomID   = "room_id"
	FieldCheckIn  = "check_in"
	FieldCheckOut = "check_out"

	ArgOverlapCheckIn  = "overlap_check_in"
	ArgOverlapCheckOut = "overlap_check_out"
)

// OverlapCondition matches bookings whose [check_in, check_out) intersects the requested stay.
// Allocation and availability both use it so they can never disagree.
const OverlapCondition = TableName + "." + FieldCheckIn + " < :" + ArgOverlapCheckOut +
	" AND " + TableName + "." + FieldCheckOut + " > :" + ArgOverlapCheckIn

// UnpaidCondition matches bookings without a payment or whose payment is not settled.
const UnpaidCondition = "payments.id IS NULL OR payments.status <> 'paid'"

func OverlapArgs(checkIn, checkOut time.Time) map[string]any {
	return map[string]any{
		ArgOverlapCheckIn:  checkIn,
		ArgOverlapCheckOut: checkOut,
	}
}

type Booking struct {
	ID       string    `db:"id"`
	GuestID  string    `db:"guest_id"`
	RoomID   string    `db:"room_id"`
	CheckIn  time.Time `db:"check_in"`
	CheckOut time.Time `db:"check_out"`

	GuestName  string          `db:"guest_name"  table:"guests" column:"name"`
	GuestPhone string          `db:"guest_phone" table:"guests" column:"phone"`
	RoomNumber string          `db:"room_number" table:"rooms"  column:"number"`
	RoomType   string          `db:"room_type"   table:"rooms"  column:"type"`
	RoomPrice  decimal.Decimal `db:"room_price"  table:"rooms"  column:"price"`

	PaymentID     *string             `db:"payment_id"     table:"payments" column:"id"`
	PaymentStatus *string             `db:"payment_status" table:"payments" column:"status"`
	PaymentAmount decimal.NullDecimal `db:"payment_amount" table:"payments" column:"amount"`
	PaymentMethod *string             `db:"payment_method" table:"payments" column:"method"`

	model.Metadata
}

func (Booking) GetJoinQuery() string {
	return "JOIN guests ON guests.id = bookings.guest_id " +
		"JOIN rooms ON rooms.id = bookings.room_id " +
		"LEFT JOIN payments ON payments.booking_id = bookings.id"
}

// IsPaid reports whether the joined payment settles the stay.
func (b Booking) IsPaid() bool {
	return b.PaymentStatus != nil && *b.PaymentStatus == "paid"
}
