package dto

import (
	"guesthouse/internal/domains/room/model"
	"guesthouse/shared"
	gDto "guesthouse/shared/dto"
	gModel "guesthouse/shared/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateRoomRequest struct {
	Number string          `json:"number" validate:"required,min=3,max=20"`
	Type   string          `json:"type"   validate:"required,min=3,max=50"`
	Price  decimal.Decimal `json:"price"  validate:"gte=500,money"`
}

func (c *CreateRoomRequest) ToModel(user string) model.Room {
	return model.Room{
		ID:       uuid.NewString(),
		Number:   c.Number,
		Type:     c.Type,
		Price:    c.Price,
		Metadata: gModel.NewMetadata(user),
	}
}

type UpdateRoomRequest struct {
	Number string           `db:"number" json:"number" validate:"omitempty,min=3,max=20"`
	Type   string           `db:"type"   json:"type"   validate:"omitempty,min=3,max=50"`
	Price  *decimal.Decimal `db:"price"  json:"price"  validate:"omitempty,gte=500,money"`
}

type AvailableRoomsRequest struct {
	CheckIn  string `json:"checkIn"  validate:"required,daytime"`
	CheckOut string `json:"checkOut" validate:"required,daytime"`
}

type RoomResponse struct {
	ID     string          `json:"id"`
	Number string          `json:"number"`
	Type   string          `json:"type"`
	Price  decimal.Decimal `json:"price"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.Number = model.Number
	r.Type = model.Type
	r.Price = model.Price
	r.Metadata.FromModel(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}
