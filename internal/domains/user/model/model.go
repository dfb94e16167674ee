package model

import (
	"time"

	"guesthouse/shared/model"
)

const (
	TableName  = "users"
	EntityName = "user"

	FieldID                  = "id"
	FieldEmail               = "email"
	FieldPassword            = "password"
	FieldRole                = "role"
	FieldStaffID             = "staff_id"
	FieldForceChangePassword = "force_change_password"
	FieldActive              = "active"
	FieldLastLogin           = "last_login"
)

type User struct {
	ID                  string     `db:"id"`
	Email               string     `db:"email"`
	Password            string     `db:"password"`
	Role                string     `db:"role"`
	StaffID             *string    `db:"staff_id"`
	ForceChangePassword bool       `db:"force_change_password"`
	Active              bool       `db:"active"`
	LastLogin           *time.Time `db:"last_login"`
	model.Metadata
}
