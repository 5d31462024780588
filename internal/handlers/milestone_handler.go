package handlers

import (
	"net/http"
	"time"

	"growtrack/internal/models"
	"growtrack/internal/service"
)

// MilestoneHandler handles milestone tracking requests under /api/children/{childId}
type MilestoneHandler struct {
	devService *service.DevelopmentService
	loc        *time.Location
}

// NewMilestoneHandler creates a new milestone handler
func NewMilestoneHandler(devService *service.DevelopmentService, loc *time.Location) *MilestoneHandler {
	return &MilestoneHandler{devService: devService, loc: loc}
}

type ageRangeRequest struct {
	Min int `json:"min" validate:"min=0"`
	Max int `json:"max" validate:"min=0"`
}

type createMilestoneRequest struct {
	Title        string                   `json:"title" validate:"required,max=200"`
	Description  string                   `json:"description" validate:"max=2000"`
	Category     models.MilestoneCategory `json:"category" validate:"required,milestone_category"`
	ExpectedAge  ageRangeRequest          `json:"expectedAge"`
	AchievedDate *string                  `json:"achievedDate"`
	Notes        string                   `json:"notes" validate:"max=2000"`
	Resources    []string                 `json:"resources" validate:"max=20,dive,url"`
}

type updateMilestoneRequest struct {
	Title       *string                   `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string                   `json:"description" validate:"omitempty,max=2000"`
	Category    *models.MilestoneCategory `json:"category" validate:"omitempty,milestone_category"`
	ExpectedAge *ageRangeRequest          `json:"expectedAge"`
	// An empty string clears the achievement
	AchievedDate *string  `json:"achievedDate"`
	Notes        *string  `json:"notes" validate:"omitempty,max=2000"`
	Resources    []string `json:"resources" validate:"omitempty,max=20,dive,url"`
}

type achieveRequest struct {
	AchievedDate *string `json:"achievedDate"`
	Notes        string  `json:"notes" validate:"max=2000"`
}

func (h *MilestoneHandler) ids(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	childID, ok := pathID(w, r, "childId")
	if !ok {
		return 0, 0, false
	}
	milestoneID, ok := pathID(w, r, "id")
	if !ok {
		return 0, 0, false
	}
	return childID, milestoneID, true
}

// List returns every milestone of a child with its status
func (h *MilestoneHandler) List(w http.ResponseWriter, r *http.Request) {
	childID, ok := pathID(w, r, "childId")
	if !ok {
		return
	}
	evaluations, err := h.devService.List(userID(r), childID)
	if err != nil {
		writeServiceError(w, err, "Failed to list milestones")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"milestones": evaluations})
}

// Summary returns milestone counts per status
func (h *MilestoneHandler) Summary(w http.ResponseWriter, r *http.Request) {
	childID, ok := pathID(w, r, "childId")
	if !ok {
		return
	}
	summary, err := h.devService.Summary(userID(r), childID)
	if err != nil {
		writeServiceError(w, err, "Failed to summarize milestones")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"summary": summary})
}

// Create adds a milestone to a child
func (h *MilestoneHandler) Create(w http.ResponseWriter, r *http.Request) {
	childID, ok := pathID(w, r, "childId")
	if !ok {
		return
	}
	var req createMilestoneRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	achieved, err := optionalDate("achievedDate", req.AchievedDate, h.loc)
	if err != nil {
		writeServiceError(w, err, "")
		return
	}

	evaluation, err := h.devService.Create(userID(r), childID, service.MilestoneInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		ExpectedAge:  models.AgeRange{Min: req.ExpectedAge.Min, Max: req.ExpectedAge.Max},
		AchievedDate: achieved,
		Notes:        req.Notes,
		Resources:    req.Resources,
	})
	if err != nil {
		writeServiceError(w, err, "Failed to create milestone")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"milestone": evaluation})
}

// Get returns one milestone with its status
func (h *MilestoneHandler) Get(w http.ResponseWriter, r *http.Request) {
	childID, milestoneID, ok := h.ids(w, r)
	if !ok {
		return
	}
	evaluation, err := h.devService.Get(userID(r), childID, milestoneID)
	if err != nil {
		writeServiceError(w, err, "Failed to get milestone")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"milestone": evaluation})
}

// Update changes the fields present in the request
func (h *MilestoneHandler) Update(w http.ResponseWriter, r *http.Request) {
	childID, milestoneID, ok := h.ids(w, r)
	if !ok {
		return
	}
	var req updateMilestoneRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	update := service.MilestoneUpdate{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Notes:       req.Notes,
		Resources:   req.Resources,
	}
	if req.ExpectedAge != nil {
		update.ExpectedAge = &models.AgeRange{Min: req.ExpectedAge.Min, Max: req.ExpectedAge.Max}
	}
	if req.AchievedDate != nil && *req.AchievedDate == "" {
		update.ClearAchieved = true
	} else {
		achieved, err := optionalDate("achievedDate", req.AchievedDate, h.loc)
		if err != nil {
			writeServiceError(w, err, "")
			return
		}
		update.AchievedDate = achieved
	}

	evaluation, err := h.devService.Update(userID(r), childID, milestoneID, update)
	if err != nil {
		writeServiceError(w, err, "Failed to update milestone")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"milestone": evaluation})
}

// Achieve marks a milestone as reached, today unless achievedDate is given
func (h *MilestoneHandler) Achieve(w http.ResponseWriter, r *http.Request) {
	childID, milestoneID, ok := h.ids(w, r)
	if !ok {
		return
	}
	var req achieveRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	achieved, err := optionalDate("achievedDate", req.AchievedDate, h.loc)
	if err != nil {
		writeServiceError(w, err, "")
		return
	}

	evaluation, err := h.devService.Achieve(userID(r), childID, milestoneID, achieved, req.Notes)
	if err != nil {
		writeServiceError(w, err, "Failed to achieve milestone")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"milestone": evaluation})
}

// Delete removes a milestone
func (h *MilestoneHandler) Delete(w http.ResponseWriter, r *http.Request) {
	childID, milestoneID, ok := h.ids(w, r)
	if !ok {
		return
	}
	if err := h.devService.Delete(userID(r), childID, milestoneID); err != nil {
		writeServiceError(w, err, "Failed to delete milestone")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
