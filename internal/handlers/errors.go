package handlers

import (
	"errors"
	"log"
	"net/http"

	"growtrack/internal/calendar"
	"growtrack/internal/development"
	"growtrack/internal/security"
	"growtrack/internal/service"
	"growtrack/internal/validation"
)

type errorBody struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondJSON(w, status, map[string]errorBody{"error": {Message: userMsg}})
}

func respondWithFieldError(w http.ResponseWriter, field, message string) {
	respondJSON(w, http.StatusBadRequest, map[string]errorBody{"error": {Message: message, Field: field}})
}

var statusBySentinel = map[error]int{
	service.ErrEmailTaken:         http.StatusConflict,
	service.ErrInvalidCredentials: http.StatusUnauthorized,
	security.ErrInvalidToken:      http.StatusUnauthorized,
	service.ErrWrongPassword:      http.StatusBadRequest,
	service.ErrShareWithSelf:      http.StatusBadRequest,
	service.ErrReplyTooDeep:       http.StatusBadRequest,
	service.ErrNotOwner:           http.StatusForbidden,
	service.ErrReadOnly:           http.StatusForbidden,
	service.ErrNotAuthor:          http.StatusForbidden,
	service.ErrUserNotFound:       http.StatusNotFound,
	service.ErrChildNotFound:      http.StatusNotFound,
	service.ErrMilestoneNotFound:  http.StatusNotFound,
	service.ErrCalendarNotFound:   http.StatusNotFound,
	service.ErrEventNotFound:      http.StatusNotFound,
	service.ErrShareNotFound:      http.StatusNotFound,
	service.ErrContentNotFound:    http.StatusNotFound,
	service.ErrTopicNotFound:      http.StatusNotFound,
	service.ErrCommentNotFound:    http.StatusNotFound,
}

// writeServiceError maps a service error to its HTTP status. Unknown errors
// are logged with logMsg and reported as 500.
func writeServiceError(w http.ResponseWriter, err error, logMsg string) {
	for sentinel, status := range statusBySentinel {
		if errors.Is(err, sentinel) {
			respondWithError(w, status, sentinel.Error(), "", nil)
			return
		}
	}

	var (
		ve         validation.ValidationError
		devInvalid *development.ValidationError
		devInput   *development.InputError
		calInput   *calendar.InputError
		recurrence *calendar.InvalidRecurrenceError
	)
	switch {
	case errors.As(err, &ve):
		respondWithFieldError(w, ve.Field, ve.Message)
	case errors.As(err, &devInvalid):
		respondWithFieldError(w, devInvalid.Field, devInvalid.Message)
	case errors.As(err, &devInput):
		respondWithFieldError(w, devInput.Field, devInput.Message)
	case errors.As(err, &calInput):
		respondWithFieldError(w, calInput.Field, calInput.Message)
	case errors.As(err, &recurrence):
		respondWithFieldError(w, "recurrence", recurrence.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}
