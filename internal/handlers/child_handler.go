package handlers

import (
	"net/http"
	"time"

	"growtrack/internal/models"
	"growtrack/internal/service"
)

// ChildHandler handles child profile requests
type ChildHandler struct {
	childService *service.ChildService
	loc          *time.Location
}

// NewChildHandler creates a new child handler. Dates without an offset are read in loc.
func NewChildHandler(childService *service.ChildService, loc *time.Location) *ChildHandler {
	return &ChildHandler{childService: childService, loc: loc}
}

type createChildRequest struct {
	Name      string        `json:"name" validate:"required,min=2,max=100"`
	BirthDate string        `json:"birthDate" validate:"required"`
	Gender    models.Gender `json:"gender" validate:"required,gender"`
	Notes     string        `json:"notes" validate:"max=2000"`
}

type updateChildRequest struct {
	Name      *string        `json:"name" validate:"omitempty,min=2,max=100"`
	BirthDate *string        `json:"birthDate"`
	Gender    *models.Gender `json:"gender" validate:"omitempty,gender"`
	Notes     *string        `json:"notes" validate:"omitempty,max=2000"`
}

// List returns the signed-in parent's children
func (h *ChildHandler) List(w http.ResponseWriter, r *http.Request) {
	children, err := h.childService.List(userID(r))
	if err != nil {
		writeServiceError(w, err, "Failed to list children")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"children": children})
}

// Create adds a child profile
func (h *ChildHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createChildRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	birth, err := parseDate("birthDate", req.BirthDate, h.loc)
	if err != nil {
		writeServiceError(w, err, "")
		return
	}

	child, err := h.childService.Create(userID(r), service.ChildInput{
		Name:      req.Name,
		BirthDate: birth,
		Gender:    req.Gender,
		Notes:     req.Notes,
	})
	if err != nil {
		writeServiceError(w, err, "Failed to create child")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"child": child})
}

// Get returns one child
func (h *ChildHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	child, err := h.childService.Get(userID(r), id)
	if err != nil {
		writeServiceError(w, err, "Failed to get child")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"child": child})
}

// Update changes the fields present in the request
func (h *ChildHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateChildRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	birth, err := optionalDate("birthDate", req.BirthDate, h.loc)
	if err != nil {
		writeServiceError(w, err, "")
		return
	}

	child, err := h.childService.Update(userID(r), id, service.ChildUpdate{
		Name:      req.Name,
		BirthDate: birth,
		Gender:    req.Gender,
		Notes:     req.Notes,
	})
	if err != nil {
		writeServiceError(w, err, "Failed to update child")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"child": child})
}

// Delete removes a child and its milestones
func (h *ChildHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.childService.Delete(userID(r), id); err != nil {
		writeServiceError(w, err, "Failed to delete child")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Age returns a child's age now, or at the optional ?now= date
func (h *ChildHandler) Age(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var now time.Time
	if raw := r.URL.Query().Get("now"); raw != "" {
		t, err := parseTime("now", raw, h.loc)
		if err != nil {
			writeServiceError(w, err, "")
			return
		}
		now = t
	}

	age, err := h.childService.Age(userID(r), id, now)
	if err != nil {
		writeServiceError(w, err, "Failed to compute age")
		return
	}
	respondJSON(w, http.StatusOK, age)
}
