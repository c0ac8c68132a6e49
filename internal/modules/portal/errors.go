package portal

import (
	"fmt"

	"yojeong/internal/domain"
)

var (
	ErrBadForm        = domain.NewValidationError("INVALID_FORM", "The form could not be read. Please try again.")
	ErrSessionDetails = domain.NewValidationError("MISSING_SESSION_DETAILS", "Please choose a session type, a photographer and a time.")
	ErrInvalidRating  = domain.NewValidationError("INVALID_RATING",
		fmt.Sprintf("Rating must be a whole number between %d and %d.", domain.MinRating, domain.MaxRating))
)

func invalidDate(date string) error {
	return domain.NewValidationError("INVALID_DATE", fmt.Sprintf("Error: %q is not a valid date (expected YYYY-MM-DD).", date))
}
