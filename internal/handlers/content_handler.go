package handlers

import (
	"net/http"
	"strings"

	"growtrack/internal/models"
	"growtrack/internal/service"
	"growtrack/internal/validation"
)

// ContentHandler serves the content library. Reads are public; a signed-in
// user also sees which items they liked.
type ContentHandler struct {
	contentService *service.ContentService
}

// NewContentHandler creates a new content handler
func NewContentHandler(contentService *service.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// List returns one page of the library filtered by
// ?category=&ageInMonths=&search=&page=&limit=
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ContentFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   q.Get("search"),
	}

	var err error
	if filter.Page, err = queryInt(r, "page", 1); err != nil {
		writeServiceError(w, err, "")
		return
	}
	if filter.Limit, err = queryInt(r, "limit", service.DefaultPageSize); err != nil {
		writeServiceError(w, err, "")
		return
	}
	if q.Get("ageInMonths") != "" {
		age, err := queryInt(r, "ageInMonths", 0)
		if err != nil {
			writeServiceError(w, err, "")
			return
		}
		filter.AgeInMonths = &age
	}

	items, pagination, err := h.contentService.List(filter, userID(r))
	if err != nil {
		writeServiceError(w, err, "Failed to list content")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"content":    items,
		"pagination": pagination,
	})
}

// Recommended returns items for the current age of ?childId=
func (h *ContentHandler) Recommended(w http.ResponseWriter, r *http.Request) {
	childID, err := queryInt(r, "childId", 0)
	if err != nil {
		writeServiceError(w, err, "")
		return
	}
	if childID <= 0 {
		writeServiceError(w, validation.ValidationError{Field: "childId", Message: "childId is required"}, "")
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeServiceError(w, err, "")
		return
	}

	items, err := h.contentService.Recommended(userID(r), int64(childID), limit)
	if err != nil {
		writeServiceError(w, err, "Failed to recommend content")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"content": items})
}

// Get returns one item and counts the view
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	item, err := h.contentService.Get(id, userID(r))
	if err != nil {
		writeServiceError(w, err, "Failed to get content")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"content": item})
}

// ToggleLike likes or unlikes an item for the signed-in user
func (h *ContentHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	liked, likes, err := h.contentService.ToggleLike(id, userID(r))
	if err != nil {
		writeServiceError(w, err, "Failed to like content")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"liked": liked, "likes": likes})
}
