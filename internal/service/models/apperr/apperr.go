package apperr

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInUse        = errors.New("still referenced")
	ErrConflict     = errors.New("already exists")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// FieldError reports which input field was rejected and why.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Invalid builds a FieldError.
func Invalid(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
