package dto

import (
	"time"

	"guesthouse/internal/domains/inventory/model"
	"guesthouse/shared"
	gDto "guesthouse/shared/dto"
	gModel "guesthouse/shared/model"

	"github.com/google/uuid"
)

type CreateItemRequest struct {
	Name         string `json:"name"         validate:"required,min=1,max=100"`
	Category     string `json:"category"     validate:"omitempty,max=50"`
	Unit         string `json:"unit"         validate:"omitempty,oneof=pcs kg L"`
	SKU          string `json:"sku"          validate:"omitempty,max=50"`
	Quantity     int    `json:"quantity"     validate:"min=0"`
	MinThreshold int    `json:"minThreshold" validate:"min=0"`
}

func (c *CreateItemRequest) ToModel(user string) model.Item {
	unit := c.Unit
	if unit == "" {
		unit = model.UnitPieces
	}

	return model.Item{
		ID:           uuid.NewString(),
		Name:         c.Name,
		Category:     c.Category,
		Unit:         unit,
		SKU:          c.SKU,
		Quantity:     c.Quantity,
		MinThreshold: c.MinThreshold,
		Metadata:     gModel.NewMetadata(user),
	}
}

// UpdateItemRequest patches item details. Stock levels change only through movements.
type UpdateItemRequest struct {
	Name         string `db:"name"          json:"name"         validate:"omitempty,min=1,max=100"`
	Category     string `db:"category"      json:"category"     validate:"omitempty,max=50"`
	Unit         string `db:"unit"          json:"unit"         validate:"omitempty,oneof=pcs kg L"`
	SKU          string `db:"sku"           json:"sku"          validate:"omitempty,max=50"`
	MinThreshold *int   `db:"min_threshold" json:"minThreshold" validate:"omitempty,min=0"`
}

type ItemResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Unit         string `json:"unit"`
	SKU          string `json:"sku"`
	Quantity     int    `json:"quantity"`
	MinThreshold int    `json:"minThreshold"`
	Low          bool   `json:"low"`
	gDto.Metadata
}

func (r *ItemResponse) FromModel(m model.Item) {
	r.ID = m.ID
	r.Name = m.Name
	r.Category = m.Category
	r.Unit = m.Unit
	r.SKU = m.SKU
	r.Quantity = m.Quantity
	r.MinThreshold = m.MinThreshold
	r.Low = m.IsLow()
	r.Metadata.FromModel(m.Metadata)
}

type GetItemsResponse struct {
	Items     []ItemResponse `json:"items"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetItemsResponse) FromModels(models []model.Item, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Items = make([]ItemResponse, len(models))
	for i, mod := range models {
		r.Items[i].FromModel(mod)
	}
}

// ItemQuery narrows an item listing.
type ItemQuery struct {
	Q        string
	Category string
	Low      bool
}

type MoveRequest struct {
	Type     string `json:"type"     validate:"required,oneof=IN OUT ADJUST"`
	Quantity int    `json:"quantity" validate:"min=0"`
	Reason   string `json:"reason"   validate:"omitempty,max=300"`
}

func NewMovement(user, itemID string, req MoveRequest, resulting int) model.Movement {
	return model.Movement{
		ID:                uuid.NewString(),
		ItemID:            itemID,
		Type:              req.Type,
		Quantity:          req.Quantity,
		ResultingQuantity: resulting,
		Reason:            req.Reason,
		Metadata:          gModel.NewMetadata(user),
	}
}

type MovementResponse struct {
	ID                string    `json:"id"`
	ItemID            string    `json:"itemId"`
	Type              string    `json:"type"`
	Quantity          int       `json:"quantity"`
	ResultingQuantity int       `json:"resultingQuantity"`
	Reason            string    `json:"reason,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	CreatedBy         string    `json:"createdBy"`
}

func (r *MovementResponse) FromModel(m model.Movement) {
	r.ID = m.ID
	r.ItemID = m.ItemID
	r.Type = m.Type
	r.Quantity = m.Quantity
	r.ResultingQuantity = m.ResultingQuantity
	r.Reason = m.Reason
	r.CreatedAt = m.CreatedAt
	r.CreatedBy = m.CreatedBy
}

type MoveResponse struct {
	Item     ItemResponse     `json:"item"`
	Movement MovementResponse `json:"movement"`
}

type CategoryMetric struct {
	Count    int `json:"count"`
	Quantity int `json:"quantity"`
}

type MetricsResponse struct {
	TotalItems    int                       `json:"totalItems"`
	TotalQuantity int                       `json:"totalQuantity"`
	LowStock      int                       `json:"lowStock"`
	Categories    map[string]CategoryMetric `json:"categories"`
}

func (r *MetricsResponse) FromModels(rows []model.CategoryMetric) {
	r.Categories = make(map[string]CategoryMetric, len(rows))

	for _, row := range rows {
		r.TotalItems += row.Count
		r.TotalQuantity += row.Quantity
		r.LowStock += row.Low

		name := row.Category
		if name == "" {
			name = "uncategorized"
		}

		current := r.Categories[name]
		r.Categories[name] = CategoryMetric{Count: current.Count + row.Count, Quantity: current.Quantity + row.Quantity}
	}
}
