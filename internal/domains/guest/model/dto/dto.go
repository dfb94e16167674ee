package dto

import (
	"guesthouse/internal/domains/guest/model"
	"guesthouse/shared"
	gDto "guesthouse/shared/dto"
	gModel "guesthouse/shared/model"

	"github.com/google/uuid"
)

type CreateGuestRequest struct {
	Name  string `json:"name"  validate:"required,min=1,max=100"`
	Phone string `json:"phone" validate:"required,min=3,max=30"`
	Email string `json:"email" validate:"omitempty,email,max=255"`
	Notes string `json:"notes" validate:"omitempty,max=1000"`
}

func (c *CreateGuestRequest) ToModel(user string) model.Guest {
	return model.Guest{
		ID:       uuid.NewString(),
		Name:     c.Name,
		Phone:    c.Phone,
		Email:    optional(c.Email),
		Notes:    optional(c.Notes),
		Metadata: gModel.NewMetadata(user),
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}

	return &value
}

type UpdateGuestRequest struct {
	Name  string `db:"name"  json:"name"  validate:"omitempty,min=1,max=100"`
	Phone string `db:"phone" json:"phone" validate:"omitempty,min=3,max=30"`
	Email string `db:"email" json:"email" validate:"omitempty,email,max=255"`
	Notes string `db:"notes" json:"notes" validate:"omitempty,max=1000"`
}

type GuestResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
	Notes string `json:"notes,omitempty"`
	gDto.Metadata
}

func (r *GuestResponse) FromModel(model model.Guest) {
	r.ID = model.ID
	r.Name = model.Name
	r.Phone = model.Phone

	if model.Email != nil {
		r.Email = *model.Email
	}

	if model.Notes != nil {
		r.Notes = *model.Notes
	}

	r.Metadata.FromModel(model.Metadata)
}

type GetGuestsResponse struct {
	Guests    []GuestResponse `json:"guests"`
	TotalPage int             `json:"total_page"`
	TotalData int             `json:"total_data"`
}

func (r *GetGuestsResponse) FromModels(models []model.Guest, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Guests = make([]GuestResponse, len(models))
	for i, mod := range models {
		r.Guests[i].FromModel(mod)
	}
}
