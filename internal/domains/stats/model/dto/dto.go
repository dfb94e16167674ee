package dto

import (
	"github.com/shopspring/decimal"
)

// OverviewQuery carries the optional start/end days (YYYY-MM-DD or RFC3339).
type OverviewQuery struct {
	Start string
	End   string
}

func (q OverviewQuery) IsLifetime() bool {
	return q.Start == "" && q.End == ""
}

type Range struct {
	Lifetime bool   `json:"lifetime"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
	IsToday  bool   `json:"isToday"`
}

type OverviewResponse struct {
	Range Range `json:"range"`

	Guests    int `json:"guests"`
	Bookings  int `json:"bookings"`
	Rooms     int `json:"rooms"`
	Payments  int `json:"payments"`
	Staff     int `json:"staff"`
	Inventory int `json:"inventory"`
	Laundry   int `json:"laundry"`

	Revenue decimal.Decimal `json:"revenue"`

	OccupiedRooms int `json:"occupiedRooms"`
	OccupancyRate int `json:"occupancyRate"`
	Arrivals      int `json:"arrivals"`
	Departures    int `json:"departures"`

	UnpaidBookingsCount int             `json:"unpaidBookingsCount"`
	UnpaidTotal         decimal.Decimal `json:"unpaidTotal"`
	LowStockCount       int             `json:"lowStockCount"`
}

type SeriesPoint struct {
	Date     string          `json:"date"`
	Revenue  decimal.Decimal `json:"revenue"`
	CheckIns int             `json:"checkIns"`
}

type ExportResponse struct {
	URL string `json:"url"`
}
