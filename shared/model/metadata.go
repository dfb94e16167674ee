package model

import (
	"time"

	"guesthouse/shared/timezone"
)

// Metadata holds the audit columns every table carries.
type Metadata struct {
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
	ModifiedAt time.Time `db:"modified_at" json:"modified_at"`
	CreatedBy  string    `db:"created_by"`
	ModifiedBy string    `db:"modified_by"`
}

// NewMetadata stamps a freshly created row as created and last modified by actor, now.
func NewMetadata(actor string) Metadata {
	now := timezone.Now()

	return Metadata{CreatedAt: now, ModifiedAt: now, CreatedBy: actor, ModifiedBy: actor}
}
