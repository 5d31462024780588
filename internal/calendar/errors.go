package calendar

import (
	"fmt"

	"growtrack/internal/models"
)

// InvalidRecurrenceError is returned for a recurrence kind the expander does not know
type InvalidRecurrenceError struct {
	Recurrence models.Recurrence
}

func (e *InvalidRecurrenceError) Error() string {
	return fmt.Sprintf("invalid recurrence: %q", string(e.Recurrence))
}

// InputError reports a malformed month reference or event date range
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
