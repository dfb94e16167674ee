package dto

import (
	"time"

	"guesthouse/internal/domains/user/model"
	gDto "guesthouse/shared/dto"
	gModel "guesthouse/shared/model"

	"github.com/google/uuid"
)

type CreateStaffUserRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=admin manager reception housekeeping barista security finance store"`
}

// NewStaffUser builds the login linked to staffID. The password must already be hashed.
func NewStaffUser(actor, staffID, email, hashedPassword, role string, forceChange bool) model.User {
	return model.User{
		ID:                  uuid.NewString(),
		Email:               email,
		Password:            hashedPassword,
		Role:                role,
		StaffID:             &staffID,
		ForceChangePassword: forceChange,
		Active:              true,
		Metadata:            gModel.NewMetadata(actor),
	}
}

type UserResponse struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	Role                string     `json:"role"`
	StaffID             *string    `json:"staffId,omitempty"`
	ForceChangePassword bool       `json:"forceChangePassword"`
	Active              bool       `json:"active"`
	LastLogin           *time.Time `json:"lastLogin,omitempty"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(m model.User) {
	r.ID = m.ID
	r.Email = m.Email
	r.Role = m.Role
	r.StaffID = m.StaffID
	r.ForceChangePassword = m.ForceChangePassword
	r.Active = m.Active
	r.LastLogin = m.LastLogin
	r.Metadata.FromModel(m.Metadata)
}
