package dto

import (
	"guesthouse/internal/domains/laundry/model"
	"guesthouse/shared"
	gDto "guesthouse/shared/dto"
	gModel "guesthouse/shared/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateLaundryRequest struct {
	GuestID string          `json:"guestId" validate:"required,uuid"`
	Items   string          `json:"items"   validate:"required,min=1,max=1000"`
	Price   decimal.Decimal `json:"price"   validate:"gte=0,money"`
	Status  string          `json:"status"  validate:"omitempty,oneof=pending in_progress done"`
}

func (c *CreateLaundryRequest) ToModel(user string) model.Laundry {
	status := c.Status
	if status == "" {
		status = model.StatusPending
	}

	return model.Laundry{
		ID:       uuid.NewString(),
		GuestID:  c.GuestID,
		Items:    c.Items,
		Status:   status,
		Price:    c.Price,
		Metadata: gModel.NewMetadata(user),
	}
}

type UpdateLaundryRequest struct {
	GuestID string           `db:"guest_id" json:"guestId" validate:"omitempty,uuid"`
	Items   string           `db:"items"    json:"items"   validate:"omitempty,min=1,max=1000"`
	Price   *decimal.Decimal `db:"price"    json:"price"   validate:"omitempty,gte=0,money"`
	Status  string           `db:"status"   json:"status"  validate:"omitempty,oneof=pending in_progress done"`
}

type UpdateLaundryStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress done"`
}

type LaundryResponse struct {
	ID            string          `json:"id"`
	GuestID       string          `json:"guestId"`
	GuestName     string          `json:"guestName"`
	GuestPhone    string          `json:"guestPhone"`
	Items         string          `json:"items"`
	Status        string          `json:"status"`
	Price         decimal.Decimal `json:"price"`
	PaymentID     string          `json:"paymentId,omitempty"`
	PaymentStatus string          `json:"paymentStatus,omitempty"`
	gDto.Metadata
}

func (r *LaundryResponse) FromModel(model model.Laundry) {
	r.ID = model.ID
	r.GuestID = model.GuestID
	r.GuestName = model.GuestName
	r.GuestPhone = model.GuestPhone
	r.Items = model.Items
	r.Status = model.Status
	r.Price = model.Price

	if model.PaymentID != nil {
		r.PaymentID = *model.PaymentID
	}

	if model.PaymentStatus != nil {
		r.PaymentStatus = *model.PaymentStatus
	}

	r.Metadata.FromModel(model.Metadata)
}

type GetLaundryResponse struct {
	Laundry   []LaundryResponse `json:"laundry"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetLaundryResponse) FromModels(models []model.Laundry, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Laundry = make([]LaundryResponse, len(models))
	for i, mod := range models {
		r.Laundry[i].FromModel(mod)
	}
}
