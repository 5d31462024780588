package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"growtrack/internal/calendar"
	"growtrack/internal/models"
	"growtrack/internal/repository"
)

const (
	DefaultOccurrences = 5
	MaxOccurrences     = 100

	// maxExpandedPerEvent bounds how many instances one recurring event contributes to a window
	maxExpandedPerEvent = 500
)

// CalendarInput holds the editable fields of a calendar
type CalendarInput struct {
	Name        string
	Description string
	Color       string
}

// EventInput holds the fields of a new or replaced event
type EventInput struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	AllDay      bool
	ChildID     *int64
	Recurrence  models.Recurrence
	Color       string
}

// MonthView is the month grid of one calendar
type MonthView struct {
	Year  int                `json:"year"`
	Month int                `json:"month"`
	Days  []calendar.DayCell `json:"days"`
}

type access int

const (
	accessNone access = iota
	accessView
	accessEdit
	accessOwner
)

// CalendarService handles calendars, sharing and events
type CalendarService struct {
	calendarRepo *repository.CalendarRepository
	userRepo     *repository.UserRepository
	children     *ChildService
	email        *EmailService
	clock        Clock
}

// NewCalendarService creates a new calendar service
func NewCalendarService(calendarRepo *repository.CalendarRepository, userRepo *repository.UserRepository, children *ChildService, email *EmailService, clock Clock) *CalendarService {
	return &CalendarService{
		calendarRepo: calendarRepo,
		userRepo:     userRepo,
		children:     children,
		email:        email,
		clock:        clock,
	}
}

// load returns a calendar and the user's access to it. Calendars the user
// cannot see are reported as not found.
func (s *CalendarService) load(userID, calendarID int64) (*models.Calendar, access, error) {
	cal, err := s.calendarRepo.GetCalendarByID(calendarID)
	if err != nil {
		return nil, accessNone, fmt.Errorf("failed to get calendar: %w", err)
	}
	if cal == nil {
		return nil, accessNone, ErrCalendarNotFound
	}
	if cal.OwnerID == userID {
		return cal, accessOwner, nil
	}

	permission, err := s.calendarRepo.GetSharePermission(calendarID, userID)
	if err != nil {
		return nil, accessNone, err
	}
	switch permission {
	case models.PermissionEdit:
		return cal, accessEdit, nil
	case models.PermissionView:
		return cal, accessView, nil
	default:
		return nil, accessNone, ErrCalendarNotFound
	}
}

func (s *CalendarService) withShares(cal *models.Calendar) (*models.Calendar, error) {
	shares, err := s.calendarRepo.GetShares(cal.ID)
	if err != nil {
		return nil, err
	}
	cal.SharedWith = shares
	return cal, nil
}

// List returns the calendars a user owns or has been shared
func (s *CalendarService) List(userID int64) ([]models.Calendar, error) {
	calendars, err := s.calendarRepo.GetCalendarsForUser(userID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Calendar, 0, len(calendars))
	for i := range calendars {
		cal, err := s.withShares(&calendars[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *cal)
	}
	return out, nil
}

// Create adds a calendar owned by userID
func (s *CalendarService) Create(userID int64, input CalendarInput) (*models.Calendar, error) {
	cal := &models.Calendar{
		OwnerID:     userID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Color:       input.Color,
		SharedWith:  []models.CalendarShare{},
	}
	if cal.Color == "" {
		cal.Color = models.DefaultEventColor
	}
	if err := s.calendarRepo.CreateCalendar(cal); err != nil {
		return nil, err
	}
	return cal, nil
}

// Get returns a calendar the user can see
func (s *CalendarService) Get(userID, calendarID int64) (*models.Calendar, error) {
	cal, _, err := s.load(userID, calendarID)
	if err != nil {
		return nil, err
	}
	return s.withShares(cal)
}

func (s *CalendarService) loadOwned(userID, calendarID int64) (*models.Calendar, error) {
	cal, level, err := s.load(userID, calendarID)
	if err != nil {
		return nil, err
	}
	if level != accessOwner {
		return nil, ErrNotOwner
	}
	return cal, nil
}

// Update changes a calendar's name, description or color. Only the owner may do this.
func (s *CalendarService) Update(userID, calendarID int64, input CalendarInput) (*models.Calendar, error) {
	cal, err := s.loadOwned(userID, calendarID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		cal.Name = name
	}
	if input.Description != "" {
		cal.Description = input.Description
	}
	if input.Color != "" {
		cal.Color = input.Color
	}
	if err := s.calendarRepo.UpdateCalendar(cal); err != nil {
		return nil, err
	}
	return s.withShares(cal)
}

// Delete removes a calendar with its events. Only the owner may do this.
func (s *CalendarService) Delete(userID, calendarID int64) error {
	if _, err := s.loadOwned(userID, calendarID); err != nil {
		return err
	}
	return s.calendarRepo.DeleteCalendar(calendarID)
}

// Share grants the user registered under email access to a calendar and notifies them
func (s *CalendarService) Share(ctx context.Context, userID, calendarID int64, email string, permission models.SharePermission) (*models.Calendar, error) {
	cal, err := s.loadOwned(userID, calendarID)
	if err != nil {
		return nil, err
	}

	target, err := s.userRepo.GetUserByEmail(normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if target == nil {
		return nil, ErrUserNotFound
	}
	if target.ID == cal.OwnerID {
		return nil, ErrShareWithSelf
	}

	if err := s.calendarRepo.SaveShare(cal.ID, target.ID, permission); err != nil {
		return nil, err
	}

	owner, err := s.userRepo.GetUserByID(userID)
	if err == nil && owner != nil {
		if err := s.email.SendCalendarShareEmail(ctx, target.Email, target.Name, owner.Name, cal.Name); err != nil {
			log.Printf("Failed to send calendar share email to %s: %v", target.Email, err)
		}
	}
	return s.withShares(cal)
}

// Unshare revokes a user's access. The owner may remove anyone; a sharee may remove themselves.
func (s *CalendarService) Unshare(userID, calendarID, targetUserID int64) error {
	_, level, err := s.load(userID, calendarID)
	if err != nil {
		return err
	}
	if level != accessOwner && userID != targetUserID {
		return ErrNotOwner
	}

	removed, err := s.calendarRepo.DeleteShare(calendarID, targetUserID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrShareNotFound
	}
	return nil
}

// buildEvent validates input for an event on cal and turns it into an event.
// A linked child must belong to the acting user or to the calendar owner.
func (s *CalendarService) buildEvent(userID int64, cal *models.Calendar, input EventInput) (models.CalendarEvent, error) {
	ev := models.CalendarEvent{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		AllDay:      input.AllDay,
		ChildID:     input.ChildID,
		Recurrence:  input.Recurrence,
		Color:       input.Color,
	}
	if ev.Title == "" {
		return ev, &calendar.InputError{Field: "title", Message: "title is required"}
	}
	if ev.Recurrence == "" {
		ev.Recurrence = models.RecurrenceNone
	}
	if err := calendar.ValidateRecurrence(ev.Recurrence); err != nil {
		return ev, err
	}
	if ev.Color == "" {
		ev.Color = models.DefaultEventColor
	}
	if ev.AllDay {
		// All-day events cover whole days in the calendar's zone
		start, end := ev.StartDate.In(s.clock.Location), ev.EndDate.In(s.clock.Location)
		ev.StartDate = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, s.clock.Location)
		ev.EndDate = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, s.clock.Location)
	}
	if ev.EndDate.Before(ev.StartDate) {
		return ev, &calendar.InputError{Field: "endDate", Message: "end date is before start date"}
	}
	if ev.ChildID != nil {
		_, err := s.children.Get(cal.OwnerID, *ev.ChildID)
		if errors.Is(err, ErrChildNotFound) && userID != cal.OwnerID {
			_, err = s.children.Get(userID, *ev.ChildID)
		}
		if err != nil {
			return ev, err
		}
	}
	return ev, nil
}

func (s *CalendarService) loadWritable(userID, calendarID int64) (*models.Calendar, error) {
	cal, level, err := s.load(userID, calendarID)
	if err != nil {
		return nil, err
	}
	if level < accessEdit {
		return nil, ErrReadOnly
	}
	return cal, nil
}

// CreateEvent adds an event to a calendar the user can edit
func (s *CalendarService) CreateEvent(userID, calendarID int64, input EventInput) (*models.CalendarEvent, error) {
	cal, err := s.loadWritable(userID, calendarID)
	if err != nil {
		return nil, err
	}
	ev, err := s.buildEvent(userID, cal, input)
	if err != nil {
		return nil, err
	}
	ev.CalendarID = calendarID
	ev.CreatedBy = userID

	if err := s.calendarRepo.CreateEvent(&ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// loadEvent returns an event, its calendar and the user's access to it
func (s *CalendarService) loadEvent(userID, eventID int64) (*models.CalendarEvent, *models.Calendar, access, error) {
	ev, err := s.calendarRepo.GetEventByID(eventID)
	if err != nil {
		return nil, nil, accessNone, fmt.Errorf("failed to get event: %w", err)
	}
	if ev == nil {
		return nil, nil, accessNone, ErrEventNotFound
	}
	cal, level, err := s.load(userID, ev.CalendarID)
	if err == ErrCalendarNotFound {
		return nil, nil, accessNone, ErrEventNotFound
	}
	if err != nil {
		return nil, nil, accessNone, err
	}
	return ev, cal, level, nil
}

// GetEvent returns an event from a calendar the user can see
func (s *CalendarService) GetEvent(userID, eventID int64) (*models.CalendarEvent, error) {
	ev, _, _, err := s.loadEvent(userID, eventID)
	return ev, err
}

// UpdateEvent replaces an event's fields
func (s *CalendarService) UpdateEvent(userID, eventID int64, input EventInput) (*models.CalendarEvent, error) {
	existing, cal, level, err := s.loadEvent(userID, eventID)
	if err != nil {
		return nil, err
	}
	if level < accessEdit {
		return nil, ErrReadOnly
	}

	ev, err := s.buildEvent(userID, cal, input)
	if err != nil {
		return nil, err
	}
	ev.ID = existing.ID
	ev.CalendarID = existing.CalendarID
	ev.CreatedBy = existing.CreatedBy
	ev.CreatedAt = existing.CreatedAt

	if err := s.calendarRepo.UpdateEvent(&ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// DeleteEvent removes an event
func (s *CalendarService) DeleteEvent(userID, eventID int64) error {
	_, _, level, err := s.loadEvent(userID, eventID)
	if err != nil {
		return err
	}
	if level < accessEdit {
		return ErrReadOnly
	}
	return s.calendarRepo.DeleteEvent(eventID)
}

// Occurrences returns the next count start times of an event. count is capped at MaxOccurrences.
func (s *CalendarService) Occurrences(userID, eventID int64, count int) ([]time.Time, error) {
	ev, _, _, err := s.loadEvent(userID, eventID)
	if err != nil {
		return nil, err
	}
	if count > MaxOccurrences {
		count = MaxOccurrences
	}
	return calendar.Occurrences(*ev, count)
}

// expandWindow returns the event instances of a calendar overlapping [from, to], ordered by start
func (s *CalendarService) expandWindow(calendarID int64, from, to time.Time) ([]models.CalendarEvent, error) {
	stored, err := s.calendarRepo.GetEventsInWindow(calendarID, from, to)
	if err != nil {
		return nil, err
	}

	instances := []models.CalendarEvent{}
	for _, ev := range stored {
		ev.StartDate = ev.StartDate.In(s.clock.Location)
		ev.EndDate = ev.EndDate.In(s.clock.Location)
		expanded, err := calendar.Expand(ev, from, to, maxExpandedPerEvent)
		if err != nil {
			// A bad stored row must not hide the rest of the calendar
			log.Printf("Error expanding event %d: %v", ev.ID, err)
			continue
		}
		instances = append(instances, expanded...)
	}

	sort.SliceStable(instances, func(i, j int) bool {
		return instances[i].StartDate.Before(instances[j].StartDate)
	})
	return instances, nil
}

// ListEvents returns the events of a calendar overlapping [from, to], with recurring events expanded
func (s *CalendarService) ListEvents(userID, calendarID int64, from, to time.Time) ([]models.CalendarEvent, error) {
	if to.Before(from) {
		return nil, &calendar.InputError{Field: "endDate", Message: "end date is before start date"}
	}
	if _, _, err := s.load(userID, calendarID); err != nil {
		return nil, err
	}
	return s.expandWindow(calendarID, from, to)
}

// Month builds the 42-day grid of a calendar for year and month
func (s *CalendarService) Month(userID, calendarID int64, year int, month time.Month) (*MonthView, error) {
	ref := calendar.Month{Year: year, Month: month}
	start, end, err := calendar.GridRange(ref, s.clock.Location)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.load(userID, calendarID); err != nil {
		return nil, err
	}

	events, err := s.expandWindow(calendarID, start, end.AddDate(0, 0, 1).Add(-time.Nanosecond))
	if err != nil {
		return nil, err
	}

	days, err := calendar.BuildMonth(ref, s.clock.Today(), events)
	if err != nil {
		return nil, err
	}
	return &MonthView{Year: year, Month: int(month), Days: days}, nil
}
