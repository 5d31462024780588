// Package calendar builds month views and expands recurring events. All
// functions are pure: "today" and every other reference instant is passed in.
package calendar

import (
	"time"

	"growtrack/internal/models"
)

const (
	// GridCells is the fixed size of a month view: 6 weeks of 7 days
	GridCells = 42

	// MaxVisibleEvents is how many events a day cell renders before overflowing
	MaxVisibleEvents = 3
)

// Month identifies a calendar month
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthOf returns the month containing t
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Validate checks the month number
func (m Month) Validate() error {
	if m.Month < time.January || m.Month > time.December {
		return &InputError{Field: "month", Message: "month must be between 1 and 12"}
	}
	return nil
}

// First returns midnight on the first day of the month in loc
func (m Month) First(loc *time.Location) time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
}

// DaysIn returns the number of days in the month
func (m Month) DaysIn() int {
	return daysIn(m.Year, m.Month)
}

// Prev returns the month before m
func (m Month) Prev() Month {
	return MonthOf(time.Date(m.Year, m.Month-1, 1, 0, 0, 0, 0, time.UTC))
}

// Next returns the month after m
func (m Month) Next() Month {
	return MonthOf(time.Date(m.Year, m.Month+1, 1, 0, 0, 0, 0, time.UTC))
}

// DayCell is one slot of the month grid
type DayCell struct {
	Day          int                    `json:"day"`
	Date         time.Time              `json:"date"`
	CurrentMonth bool                   `json:"currentMonth"`
	IsToday      bool                   `json:"isToday"`
	Events       []models.CalendarEvent `json:"-"`
	Visible      []models.CalendarEvent `json:"events"`
	Overflow     int                    `json:"overflow"`
}

// GridRange returns the first and last day shown by the month view of ref.
// Events overlapping [start, end+1d) are the only ones that can appear.
func GridRange(ref Month, loc *time.Location) (time.Time, time.Time, error) {
	if err := ref.Validate(); err != nil {
		return time.Time{}, time.Time{}, err
	}
	first := ref.First(loc)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	return start, start.AddDate(0, 0, GridCells-1), nil
}

// BuildMonth lays out the 42-cell grid for ref starting on Sunday and assigns
// events to every day they span. Date math happens in today's location.
func BuildMonth(ref Month, today time.Time, events []models.CalendarEvent) ([]DayCell, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	loc := today.Location()
	first := ref.First(loc)
	firstDayOfWeek := int(first.Weekday())
	todayDate := startOfDay(today)

	cells := make([]DayCell, 0, GridCells)

	prev := ref.Prev()
	prevLastDay := prev.DaysIn()
	for i := firstDayOfWeek - 1; i >= 0; i-- {
		day := prevLastDay - i
		cells = append(cells, newCell(time.Date(prev.Year, prev.Month, day, 0, 0, 0, 0, loc), false, false))
	}

	for day := 1; day <= ref.DaysIn(); day++ {
		d := time.Date(ref.Year, ref.Month, day, 0, 0, 0, 0, loc)
		cells = append(cells, newCell(d, true, d.Equal(todayDate)))
	}

	next := ref.Next()
	for day := 1; len(cells) < GridCells; day++ {
		cells = append(cells, newCell(time.Date(next.Year, next.Month, day, 0, 0, 0, 0, loc), false, false))
	}

	for i := range cells {
		cells[i].setEvents(DayEvents(cells[i].Date, events))
	}

	return cells, nil
}

func newCell(d time.Time, currentMonth, isToday bool) DayCell {
	return DayCell{
		Day:          d.Day(),
		Date:         d,
		CurrentMonth: currentMonth,
		IsToday:      isToday,
	}
}

func (c *DayCell) setEvents(events []models.CalendarEvent) {
	c.Events = events
	c.Visible = events
	c.Overflow = 0
	if len(events) > MaxVisibleEvents {
		c.Visible = events[:MaxVisibleEvents]
		c.Overflow = len(events) - MaxVisibleEvents
	}
	if c.Visible == nil {
		c.Visible = []models.CalendarEvent{}
	}
}

// DayEvents returns the events whose day range covers day. Start and end are
// truncated to whole days in day's location and both ends are inclusive.
func DayEvents(day time.Time, events []models.CalendarEvent) []models.CalendarEvent {
	loc := day.Location()
	check := startOfDay(day)

	var matched []models.CalendarEvent
	for _, ev := range events {
		startDay := startOfDay(ev.StartDate.In(loc))
		endDay := startOfDay(ev.EndDate.In(loc))
		if !check.Before(startDay) && !check.After(endDay) {
			matched = append(matched, ev)
		}
	}
	return matched
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
