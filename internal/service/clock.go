package service

import "time"

// Clock supplies "now" and the zone calendar dates are read in
type Clock struct {
	Location *time.Location
	Now      func() time.Time
}

// NewClock returns a wall clock for loc
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{Location: loc, Now: time.Now}
}

// Today returns the current instant in the clock's zone
func (c Clock) Today() time.Time {
	return c.Now().In(c.Location)
}

// Local reinterprets the calendar date of d as midnight in the clock's zone
func (c Clock) Local(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, c.Location)
}

// StoredDate returns the calendar date of d as UTC midnight, the form dates are stored in
func StoredDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
