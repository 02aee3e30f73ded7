package shop

import "errors"

// ErrNotFound reports that the requested entity is absent from the
// persistent store. Callers test for it with errors.Is.
var ErrNotFound = errors.New("not found")

// ValidationError reports a malformed or missing input value. It is always
// returned before any store or cache access.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalidField(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// invalidInput folds an ozzo validation result into the taxonomy.
func invalidInput(err error) *ValidationError {
	return &ValidationError{Message: err.Error()}
}
