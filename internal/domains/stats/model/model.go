package model

const (
	EntityName = "stats"

	// CachePrefix covers every cached stats response.
	CachePrefix = "stats:"

	CacheOverview = CachePrefix + "overview"
	CacheSeries   = CachePrefix + "series"

	DefaultSeriesDays = 7
	MinSeriesDays     = 1
	MaxSeriesDays     = 31

	ArgRangeStart = "range_start"
	ArgRangeEnd   = "range_end"
	ArgAt         = "occupied_at"
)

// OccupiedCondition matches bookings holding a room at :occupied_at.
const OccupiedCondition = "bookings.check_in <= :" + ArgAt + " AND bookings.check_out > :" + ArgAt

// TouchesRangeCondition matches bookings whose stay meets [:range_start, :range_end] at any point.
const TouchesRangeCondition = "bookings.check_in <= :" + ArgRangeEnd + " AND bookings.check_out >= :" + ArgRangeStart
