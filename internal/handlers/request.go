package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"growtrack/internal/validation"
)

// Accepted date and time layouts for request values. Values without an
// offset are read in the server's configured zone.
var (
	dateLayouts = []string{time.DateOnly, time.RFC3339}
	timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", time.DateOnly}
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// decodeJSON reads a request body into dst and validates it. On failure the
// error response has already been written and false is returned.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if isMaxBytesError(err) {
			respondWithError(w, http.StatusRequestEntityTooLarge, ErrBodyTooLarge, "", nil)
			return false
		}
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return false
	}
	if err := validation.Struct(dst); err != nil {
		writeServiceError(w, err, "Failed to validate request")
		return false
	}
	return true
}

// pathID parses a numeric path parameter, writing a 400 when it is malformed
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, ErrInvalidID, "", nil)
		return 0, false
	}
	return id, true
}

// queryInt returns the integer query parameter name, or def when absent
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validation.ValidationError{Field: name, Message: name + " must be a number"}
	}
	return v, nil
}

func parseLayouts(field, value string, layouts []string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, validation.ValidationError{Field: field, Message: field + " is not a valid date"}
}

// parseDate reads a calendar date such as 2024-05-01
func parseDate(field, value string, loc *time.Location) (time.Time, error) {
	return parseLayouts(field, value, dateLayouts, loc)
}

// parseTime reads an instant such as 2024-05-01T10:30:00Z
func parseTime(field, value string, loc *time.Location) (time.Time, error) {
	return parseLayouts(field, value, timeLayouts, loc)
}

// optionalDate parses value when non-nil and non-empty
func optionalDate(field string, value *string, loc *time.Location) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := parseDate(field, *value, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// isMaxBytesError reports whether err came from an oversized body
func isMaxBytesError(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
