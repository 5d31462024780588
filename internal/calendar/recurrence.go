package calendar

import (
	"time"

	"growtrack/internal/models"
)

const (
	oneDay  = 24 * time.Hour
	oneWeek = 7 * oneDay
)

// ValidateRecurrence rejects recurrence kinds the expander cannot handle.
// An empty value is treated as none.
func ValidateRecurrence(r models.Recurrence) error {
	switch r {
	case "", models.RecurrenceNone, models.RecurrenceDaily, models.RecurrenceWeekly, models.RecurrenceMonthly:
		return nil
	default:
		return &InvalidRecurrenceError{Recurrence: r}
	}
}

// Occurrences returns the first count start instants of ev. Non-recurring
// events yield at most their own start. count <= 0 yields an empty slice.
func Occurrences(ev models.CalendarEvent, count int) ([]time.Time, error) {
	if err := ValidateRecurrence(ev.Recurrence); err != nil {
		return nil, err
	}
	if count <= 0 {
		return []time.Time{}, nil
	}

	if ev.Recurrence == "" || ev.Recurrence == models.RecurrenceNone {
		return []time.Time{ev.StartDate}, nil
	}

	out := make([]time.Time, count)
	for i := range out {
		out[i] = nth(ev.StartDate, ev.Recurrence, i)
	}
	return out, nil
}

// nth returns the i-th occurrence counted from start. Monthly steps are
// computed from the original start so a clamped month does not shift later ones.
func nth(start time.Time, r models.Recurrence, i int) time.Time {
	switch r {
	case models.RecurrenceDaily:
		return start.Add(time.Duration(i) * oneDay)
	case models.RecurrenceWeekly:
		return start.Add(time.Duration(i) * oneWeek)
	case models.RecurrenceMonthly:
		return addMonthsClamped(start, i)
	default:
		return start
	}
}

// addMonthsClamped moves t forward n calendar months keeping the day of
// month, clamped to the last day of the target month
func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(target.Year(), target.Month()); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// Expand returns concrete instances of ev that overlap [from, to]. Each
// instance keeps the original duration. At most limit instances are returned.
func Expand(ev models.CalendarEvent, from, to time.Time, limit int) ([]models.CalendarEvent, error) {
	if err := ValidateRecurrence(ev.Recurrence); err != nil {
		return nil, err
	}
	if ev.EndDate.Before(ev.StartDate) {
		return nil, &InputError{Field: "endDate", Message: "end date is before start date"}
	}

	duration := ev.EndDate.Sub(ev.StartDate)
	overlaps := func(start time.Time) bool {
		return !start.After(to) && !start.Add(duration).Before(from)
	}

	if ev.Recurrence == "" || ev.Recurrence == models.RecurrenceNone {
		if overlaps(ev.StartDate) {
			return []models.CalendarEvent{ev}, nil
		}
		return nil, nil
	}

	var out []models.CalendarEvent
	for i := 0; len(out) < limit; i++ {
		start := nth(ev.StartDate, ev.Recurrence, i)
		if start.After(to) {
			break
		}
		if !overlaps(start) {
			continue
		}
		instance := ev
		instance.StartDate = start
		instance.EndDate = start.Add(duration)
		out = append(out, instance)
	}
	return out, nil
}
