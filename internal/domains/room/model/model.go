package model

import (
	"guesthouse/shared/model"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID     = "id"
	FieldNumber = "number"
	FieldType   = "type"
	FieldPrice  = "price"
)

type Room struct {
	ID     string          `db:"id"`
	Number string          `db:"number"`
	Type   string          `db:"type"`
	Price  decimal.Decimal `db:"price"`
	model.Metadata
}
