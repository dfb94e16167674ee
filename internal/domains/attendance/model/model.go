package model

import (
	"time"

	"guesthouse/shared/model"
)

const (
	TableName  = "attendance"
	EntityName = "attendance"

	FieldID       = "id"
	FieldStaffID  = "staff_id"
	FieldDate     = "date"
	FieldCheckIn  = "check_in"
	FieldCheckOut = "check_out"

	ArgDayStart = "day_start"
	ArgDayEnd   = "day_end"
)

const (
	ActionCheckIn           = "CHECK_IN"
	ActionCheckOut          = "CHECK_OUT"
	ActionAlreadyCheckedOut = "ALREADY_CHECKED_OUT"
)

type Attendance struct {
	ID       string     `db:"id"`
	StaffID  string     `db:"staff_id"`
	Date     time.Time  `db:"date"`
	CheckIn  time.Time  `db:"check_in"`
	CheckOut *time.Time `db:"check_out"`

	StaffName    string `db:"staff_name"    table:"staff" column:"name"`
	StaffRole    string `db:"staff_role"    table:"staff" column:"role"`
	StaffBarcode string `db:"staff_barcode" table:"staff" column:"barcode"`

	model.Metadata
}

func (Attendance) GetJoinQuery() string {
	return "JOIN staff ON staff.id = attendance.staff_id"
}

func (a Attendance) CheckedOut() bool {
	return a.CheckOut != nil
}
