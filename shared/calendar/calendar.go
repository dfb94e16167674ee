// Package calendar holds the day-boundary and night-count arithmetic shared by
// bookings, payments, attendance and reporting.
package calendar

import (
	"errors"
	"math"
	"time"
)

const (
	DayKeyFormat = "2006-01-02"

	day = 24 * time.Hour
)

var (
	ErrInvalidDay     = errors.New("invalid date, expected YYYY-MM-DD or RFC3339")
	ErrInvalidInstant = errors.New("invalid datetime, expected RFC3339 or YYYY-MM-DD")
)

// DayWindow is the half-open UTC interval [DayStart, DayEnd) of one local calendar day.
type DayWindow struct {
	DayKey   string
	DayStart time.Time
	DayEnd   time.Time
}

// Contains reports whether instant falls inside the window.
func (w DayWindow) Contains(instant time.Time) bool {
	return !instant.Before(w.DayStart) && instant.Before(w.DayEnd)
}

// LastInstant is the final instant of the window at storage (microsecond) precision.
func (w DayWindow) LastInstant() time.Time {
	return w.DayEnd.Add(-time.Microsecond)
}

// LocalDayWindow returns the local day, under a fixed UTC offset, that contains instant.
func LocalDayWindow(instant time.Time, utcOffsetMinutes int) DayWindow {
	offset := time.Duration(utcOffsetMinutes) * time.Minute
	local := instant.UTC().Add(offset)

	year, month, date := local.Date()
	start := time.Date(year, month, date, 0, 0, 0, 0, time.UTC).Add(-offset)

	return DayWindow{
		DayKey:   local.Format(DayKeyFormat),
		DayStart: start,
		DayEnd:   start.Add(day),
	}
}

// ParseLocalDay accepts either a calendar date (YYYY-MM-DD, read as a local day)
// or an RFC3339 instant, and returns the local day window it designates.
func ParseLocalDay(value string, utcOffsetMinutes int) (DayWindow, error) {
	if date, err := time.Parse(DayKeyFormat, value); err == nil {
		offset := time.Duration(utcOffsetMinutes) * time.Minute

		return LocalDayWindow(date.Add(-offset), utcOffsetMinutes), nil
	}

	instant, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return DayWindow{}, ErrInvalidDay
	}

	return LocalDayWindow(instant, utcOffsetMinutes), nil
}

// ParseInstant reads an RFC3339 timestamp, or a calendar date taken as the start of that local day.
func ParseInstant(value string, utcOffsetMinutes int) (time.Time, error) {
	if instant, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return instant.UTC(), nil
	}

	if _, err := time.Parse(DayKeyFormat, value); err == nil {
		window, err := ParseLocalDay(value, utcOffsetMinutes)
		if err != nil {
			return time.Time{}, err
		}

		return window.DayStart, nil
	}

	return time.Time{}, ErrInvalidInstant
}

// NightCount is the number of nights billed for a stay, never less than one.
func NightCount(checkIn, checkOut time.Time) int {
	diff := checkOut.Sub(checkIn)
	if diff <= 0 {
		return 1
	}

	nights := int(math.Ceil(float64(diff) / float64(day)))
	if nights < 1 {
		return 1
	}

	return nights
}
