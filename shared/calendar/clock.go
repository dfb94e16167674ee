package calendar

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// NewSystem returns the wall clock in UTC.
func NewSystem() Clock {
	return systemClock{}
}

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time {
	return f.now
}

// NewFixed returns a clock frozen at now.
func NewFixed(now time.Time) Clock {
	return fixedClock{now: now.UTC()}
}
