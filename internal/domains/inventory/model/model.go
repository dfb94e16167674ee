package model

import (
	"time"

	"guesthouse/shared/model"
)

const (
	TableName  = "inventory"
	EntityName = "inventory"

	FieldID           = "id"
	FieldName         = "name"
	FieldCategory     = "category"
	FieldUnit         = "unit"
	FieldSKU          = "sku"
	FieldQuantity     = "quantity"
	FieldMinThreshold = "min_threshold"

	MovementTableName  = "inventory_movements"
	MovementEntityName = "inventory_movement"

	FieldItemID = "item_id"
)

const (
	UnitPieces = "pcs"
	UnitKilo   = "kg"
	UnitLitre  = "L"
)

const (
	MoveIn     = "IN"
	MoveOut    = "OUT"
	MoveAdjust = "ADJUST"
)

// LowStockCondition matches items at or below their reorder threshold.
const LowStockCondition = TableName + "." + FieldQuantity + " <= " + TableName + "." + FieldMinThreshold

type Item struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	Category     string `db:"category"`
	Unit         string `db:"unit"`
	SKU          string `db:"sku"`
	Quantity     int    `db:"quantity"`
	MinThreshold int    `db:"min_threshold"`
	model.Metadata
}

func (i Item) IsLow() bool {
	return i.Quantity <= i.MinThreshold
}

// Movement is an append-only record of one stock change.
type Movement struct {
	ID                string `db:"id"`
	ItemID            string `db:"item_id"`
	Type              string `db:"type"`
	Quantity          int    `db:"quantity"`
	ResultingQuantity int    `db:"resulting_quantity"`
	Reason            string `db:"reason"`
	model.Metadata
}

// CategoryMetric is one row of the per-category stock aggregate.
type CategoryMetric struct {
	Category string `db:"category"`
	Count    int    `db:"item_count"`
	Quantity int    `db:"quantity"`
	Low      int    `db:"low_count"`
}

// LowStockAlert is published when a movement leaves an item at or below its threshold.
type LowStockAlert struct {
	ItemID       string    `json:"itemId"`
	Name         string    `json:"name"`
	SKU          string    `json:"sku"`
	Unit         string    `json:"unit"`
	Quantity     int       `json:"quantity"`
	MinThreshold int       `json:"minThreshold"`
	MovementType string    `json:"movementType"`
	At           time.Time `json:"at"`
}
