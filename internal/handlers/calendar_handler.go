package handlers

import (
	"net/http"
	"strings"
	"time"

	"growtrack/internal/models"
	"growtrack/internal/service"
	"growtrack/internal/validation"
)

// CalendarHandler handles calendar, sharing and event requests
type CalendarHandler struct {
	calendarService *service.CalendarService
	loc             *time.Location
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(calendarService *service.CalendarService, loc *time.Location) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService, loc: loc}
}

type calendarRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}

type updateCalendarRequest struct {
	Name        string `json:"name" validate:"max=100"`
	Description string `json:"description" validate:"max=500"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}

type shareRequest struct {
	Email      string                 `json:"email" validate:"required,email"`
	Permission models.SharePermission `json:"permission" validate:"required,share_permission"`
}

type eventRequest struct {
	Title       *string            `json:"title" validate:"omitempty,max=200"`
	Description *string            `json:"description" validate:"omitempty,max=2000"`
	StartDate   *string            `json:"startDate"`
	EndDate     *string            `json:"endDate"`
	AllDay      *bool              `json:"allDay"`
	ChildID     *int64             `json:"childId"`
	Recurrence  *models.Recurrence `json:"recurrence" validate:"omitempty,recurrence"`
	Color       *string            `json:"color" validate:"omitempty,hexcolor"`
}

// apply copies the fields present in req onto input
func (h *CalendarHandler) apply(req eventRequest, input *service.EventInput) error {
	if req.Title != nil {
		input.Title = *req.Title
	}
	if req.Description != nil {
		input.Description = *req.Description
	}
	if req.StartDate != nil {
		start, err := parseTime("startDate", *req.StartDate, h.loc)
		if err != nil {
			return err
		}
		input.StartDate = start
	}
	if req.EndDate != nil {
		end, err := parseTime("endDate", *req.EndDate, h.loc)
		if err != nil {
			return err
		}
		input.EndDate = end
	}
	if req.AllDay != nil {
		input.AllDay = *req.AllDay
	}
	if req.ChildID != nil {
		input.ChildID = req.ChildID
		if *req.ChildID == 0 {
			input.ChildID = nil
		}
	}
	if req.Recurrence != nil {
		input.Recurrence = *req.Recurrence
	}
	if req.Color != nil {
		input.Color = *req.Color
	}
	return nil
}

// List returns the calendars the user owns or that are shared with them
func (h *CalendarHandler) List(w http.ResponseWriter, r *http.Request) {
	calendars, err := h.calendarService.List(userID(r))
	if err != nil {
		writeServiceError(w, err, "Failed to list calendars")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"calendars": calendars})
}

// Create adds a calendar owned by the user
func (h *CalendarHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req calendarRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cal, err := h.calendarService.Create(userID(r), service.CalendarInput(req))
	if err != nil {
		writeServiceError(w, err, "Failed to create calendar")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"calendar": cal})
}

// Get returns one calendar with its shares
func (h *CalendarHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	cal, err := h.calendarService.Get(userID(r), id)
	if err != nil {
		writeServiceError(w, err, "Failed to get calendar")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"calendar": cal})
}

// Update changes a calendar's name, description or color
func (h *CalendarHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateCalendarRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cal, err := h.calendarService.Update(userID(r), id, service.CalendarInput(req))
	if err != nil {
		writeServiceError(w, err, "Failed to update calendar")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"calendar": cal})
}

// Delete removes a calendar and its events
func (h *CalendarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.calendarService.Delete(userID(r), id); err != nil {
		writeServiceError(w, err, "Failed to delete calendar")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Share grants another parent access to a calendar
func (h *CalendarHandler) Share(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req shareRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cal, err := h.calendarService.Share(r.Context(), userID(r), id, req.Email, req.Permission)
	if err != nil {
		writeServiceError(w, err, "Failed to share calendar")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"calendar": cal})
}

// Unshare revokes a user's access to a calendar
func (h *CalendarHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	target, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	if err := h.calendarService.Unshare(userID(r), id, target); err != nil {
		writeServiceError(w, err, "Failed to unshare calendar")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEvents returns the events overlapping ?startDate=&endDate=. A date-only
// endDate covers that whole day.
func (h *CalendarHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "calendarId")
	if !ok {
		return
	}
	q := r.URL.Query()
	if q.Get("startDate") == "" || q.Get("endDate") == "" {
		writeServiceError(w, validation.ValidationError{Field: "startDate", Message: "startDate and endDate are required"}, "")
		return
	}
	from, err := parseTime("startDate", q.Get("startDate"), h.loc)
	if err != nil {
		writeServiceError(w, err, "")
		return
	}
	to, err := parseTime("endDate", q.Get("endDate"), h.loc)
	if err != nil {
		writeServiceError(w, err, "")
		return
	}
	if len(strings.TrimSpace(q.Get("endDate"))) == len(time.DateOnly) {
		to = to.AddDate(0, 0, 1).Add(-time.Second)
	}

	events, err := h.calendarService.ListEvents(userID(r), id, from, to)
	if err != nil {
		writeServiceError(w, err, "Failed to list events")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// CreateEvent adds an event. endDate defaults to startDate.
func (h *CalendarHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "calendarId")
	if !ok {
		return
	}
	var req eventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.StartDate == nil {
		writeServiceError(w, validation.ValidationError{Field: "startDate", Message: "startDate is required"}, "")
		return
	}

	var input service.EventInput
	if err := h.apply(req, &input); err != nil {
		writeServiceError(w, err, "")
		return
	}
	if req.EndDate == nil {
		input.EndDate = input.StartDate
	}

	ev, err := h.calendarService.CreateEvent(userID(r), id, input)
	if err != nil {
		writeServiceError(w, err, "Failed to create event")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"event": ev})
}

// GetEvent returns one event
func (h *CalendarHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ev, err := h.calendarService.GetEvent(userID(r), id)
	if err != nil {
		writeServiceError(w, err, "Failed to get event")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"event": ev})
}

// UpdateEvent changes the fields present in the request
func (h *CalendarHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req eventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	existing, err := h.calendarService.GetEvent(userID(r), id)
	if err != nil {
		writeServiceError(w, err, "Failed to get event")
		return
	}
	input := service.EventInput{
		Title:       existing.Title,
		Description: existing.Description,
		StartDate:   existing.StartDate,
		EndDate:     existing.EndDate,
		AllDay:      existing.AllDay,
		ChildID:     existing.ChildID,
		Recurrence:  existing.Recurrence,
		Color:       existing.Color,
	}
	if err := h.apply(req, &input); err != nil {
		writeServiceError(w, err, "")
		return
	}

	ev, err := h.calendarService.UpdateEvent(userID(r), id, input)
	if err != nil {
		writeServiceError(w, err, "Failed to update event")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"event": ev})
}

// DeleteEvent removes an event
func (h *CalendarHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.calendarService.DeleteEvent(userID(r), id); err != nil {
		writeServiceError(w, err, "Failed to delete event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Occurrences returns the next ?count= start times of an event
func (h *CalendarHandler) Occurrences(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	count, err := queryInt(r, "count", service.DefaultOccurrences)
	if err != nil {
		writeServiceError(w, err, "")
		return
	}

	occurrences, err := h.calendarService.Occurrences(userID(r), id, count)
	if err != nil {
		writeServiceError(w, err, "Failed to expand event")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"occurrences": occurrences})
}

// Month returns the 42-day grid for ?year=&month=, defaulting to the current month
func (h *CalendarHandler) Month(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "calendarId")
	if !ok {
		return
	}
	now := time.Now().In(h.loc)
	year, err := queryInt(r, "year", now.Year())
	if err != nil {
		writeServiceError(w, err, "")
		return
	}
	month, err := queryInt(r, "month", int(now.Month()))
	if err != nil {
		writeServiceError(w, err, "")
		return
	}

	view, err := h.calendarService.Month(userID(r), id, year, time.Month(month))
	if err != nil {
		writeServiceError(w, err, "Failed to build month")
		return
	}
	respondJSON(w, http.StatusOK, view)
}
