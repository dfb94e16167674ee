package dto

import (
	"guesthouse/shared/constant"
	"guesthouse/shared/model"
	"guesthouse/shared/timezone"
)

// Metadata is the audit block embedded in every entity response.
// Timestamps are rendered in the guesthouse's local zone.
type Metadata struct {
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at,omitempty"`
	CreatedBy  string `json:"created_by"`
	ModifiedBy string `json:"modified_by,omitempty"`
}

func (m *Metadata) FromModel(src model.Metadata) {
	m.CreatedAt = timezone.Format(src.CreatedAt, constant.DateFormat)
	m.CreatedBy = src.CreatedBy
	m.ModifiedBy = src.ModifiedBy

	if !src.ModifiedAt.IsZero() {
		m.ModifiedAt = timezone.Format(src.ModifiedAt, constant.DateFormat)
	}
}
