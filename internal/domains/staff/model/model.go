package model

import (
	"regexp"

	"guesthouse/shared/model"
)

const (
	TableName  = "staff"
	EntityName = "staff"

	FieldID      = "id"
	FieldName    = "name"
	FieldRole    = "role"
	FieldPhone   = "phone"
	FieldBarcode = "barcode"

	BarcodePrefix = "EMP-"
)

// BarcodePattern is the printed form of a staff badge code.
var BarcodePattern = regexp.MustCompile(`^EMP-\d{6}$`)

type Staff struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	Role    string `db:"role"`
	Phone   string `db:"phone"`
	Barcode string `db:"barcode"`

	UserID                  *string `db:"user_id"                   table:"users" column:"id"`
	UserEmail               *string `db:"user_email"                table:"users" column:"email"`
	UserRole                *string `db:"user_role"                 table:"users" column:"role"`
	UserActive              *bool   `db:"user_active"               table:"users" column:"active"`
	UserForceChangePassword *bool   `db:"user_force_change_password" table:"users" column:"force_change_password"`

	model.Metadata
}

func (Staff) GetJoinQuery() string {
	return "LEFT JOIN users ON users.staff_id = staff.id"
}

func (s Staff) HasUser() bool {
	return s.UserID != nil
}
