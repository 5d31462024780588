package development

import "fmt"

// ValidationError reports malformed milestone data that cannot be classified
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InputError reports a date argument that is missing or lies in the future
// relative to the supplied reference instant
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
