package domain

import "errors"

var (
	ErrValidation         = errors.New("validation_error")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidTransition  = errors.New("invalid_status_transition")
)

// ValidationError carries a message meant for the person who submitted the form.
// It matches ErrValidation under errors.Is.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func NewValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}
