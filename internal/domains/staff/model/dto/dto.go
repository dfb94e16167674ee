package dto

import (
	"guesthouse/internal/domains/staff/model"
	"guesthouse/shared"
	gDto "guesthouse/shared/dto"
	gModel "guesthouse/shared/model"

	"github.com/google/uuid"
)

type CreateStaffRequest struct {
	Name  string `json:"name"  validate:"required,min=1,max=100"`
	Role  string `json:"role"  validate:"required,oneof=admin manager reception housekeeping barista security finance store"`
	Phone string `json:"phone" validate:"omitempty,max=30"`

	// Account, when given, creates the linked login together with the staff member.
	Account *AccountRequest `json:"account,omitempty" validate:"omitempty"`
}

type AccountRequest struct {
	Email               string `json:"email"               validate:"required,email,max=255"`
	Password            string `json:"password"            validate:"required,min=8,max=72"`
	ForceChangePassword *bool  `json:"forceChangePassword"`
}

// MustChangePassword defaults to true for accounts created by someone else.
func (a AccountRequest) MustChangePassword() bool {
	if a.ForceChangePassword == nil {
		return true
	}

	return *a.ForceChangePassword
}

func (c *CreateStaffRequest) ToModel(user, barcode string) model.Staff {
	return model.Staff{
		ID:       uuid.NewString(),
		Name:     c.Name,
		Role:     c.Role,
		Phone:    c.Phone,
		Barcode:  barcode,
		Metadata: gModel.NewMetadata(user),
	}
}

type UpdateStaffRequest struct {
	Name  string `db:"name"  json:"name"  validate:"omitempty,min=1,max=100"`
	Role  string `db:"role"  json:"role"  validate:"omitempty,oneof=admin manager reception housekeeping barista security finance store"`
	Phone string `db:"phone" json:"phone" validate:"omitempty,max=30"`
}

type LinkedUser struct {
	ID                  string `json:"id"`
	Email               string `json:"email"`
	Role                string `json:"role"`
	Active              bool   `json:"active"`
	ForceChangePassword bool   `json:"forceChangePassword"`
}

type StaffResponse struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Role    string      `json:"role"`
	Phone   string      `json:"phone"`
	Barcode string      `json:"barcode"`
	User    *LinkedUser `json:"user,omitempty"`
	gDto.Metadata
}

func (r *StaffResponse) FromModel(m model.Staff) {
	r.ID = m.ID
	r.Name = m.Name
	r.Role = m.Role
	r.Phone = m.Phone
	r.Barcode = m.Barcode
	r.User = nil

	if m.HasUser() {
		r.User = &LinkedUser{ID: *m.UserID}

		if m.UserEmail != nil {
			r.User.Email = *m.UserEmail
		}

		if m.UserRole != nil {
			r.User.Role = *m.UserRole
		}

		if m.UserActive != nil {
			r.User.Active = *m.UserActive
		}

		if m.UserForceChangePassword != nil {
			r.User.ForceChangePassword = *m.UserForceChangePassword
		}
	}

	r.Metadata.FromModel(m.Metadata)
}

type GetStaffResponse struct {
	Staff     []StaffResponse `json:"staff"`
	TotalPage int             `json:"total_page"`
	TotalData int             `json:"total_data"`
}

func (r *GetStaffResponse) FromModels(models []model.Staff, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Staff = make([]StaffResponse, len(models))
	for i, mod := range models {
		r.Staff[i].FromModel(mod)
	}
}
