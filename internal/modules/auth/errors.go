package auth

import "yojeong/internal/domain"

var (
	ErrPasswordMismatch = domain.NewValidationError("PASSWORD_MISMATCH", "Passwords do not match.")
	ErrMissingFields    = domain.NewValidationError("MISSING_FIELDS", "Please provide a name, a valid email and a password.")
)
