package models

import "time"

// Recurrence describes how a calendar event repeats
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// SharePermission is the access level granted on a shared calendar
type SharePermission string

const (
	PermissionView SharePermission = "view"
	PermissionEdit SharePermission = "edit"
)

// DefaultEventColor is used when an event is created without a color
const DefaultEventColor = "#4F46E5"

// Calendar groups events and can be shared with other parents
type Calendar struct {
	ID          int64           `json:"id"`
	OwnerID     int64           `json:"ownerId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Color       string          `json:"color"`
	SharedWith  []CalendarShare `json:"sharedWith"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CalendarShare grants another user access to a calendar
type CalendarShare struct {
	CalendarID int64           `json:"calendarId"`
	UserID     int64           `json:"userId"`
	Email      string          `json:"email"`
	Name       string          `json:"name"`
	Permission SharePermission `json:"permission"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// CalendarEvent is a single entry on a calendar. ChildID is a lookup-only
// reference and is nil when the event is not about a specific child.
type CalendarEvent struct {
	ID          int64      `json:"id"`
	CalendarID  int64      `json:"calendarId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     time.Time  `json:"endDate"`
	AllDay      bool       `json:"allDay"`
	ChildID     *int64     `json:"childId,omitempty"`
	Recurrence  Recurrence `json:"recurrence"`
	Color       string     `json:"color"`
	CreatedBy   int64      `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// IsActive reports whether the event is in progress at now
func (e *CalendarEvent) IsActive(now time.Time) bool {
	return !e.StartDate.After(now) && !e.EndDate.Before(now)
}

// IsUpcoming reports whether the event starts after now and within threshold
func (e *CalendarEvent) IsUpcoming(now time.Time, threshold time.Duration) bool {
	return e.StartDate.After(now) && !e.StartDate.After(now.Add(threshold))
}
