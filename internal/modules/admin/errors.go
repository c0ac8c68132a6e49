package admin

import (
	"fmt"

	"yojeong/internal/domain"
)

var (
	ErrUserHasRecords = fmt.Errorf("%w: user still owns bookings, sessions or feedback", domain.ErrConflict)
	ErrEmailTaken     = fmt.Errorf("%w: email already belongs to another account", domain.ErrConflict)
	ErrDeleteSelf     = domain.NewValidationError("DELETE_SELF", "You cannot delete the account you are signed in with.")
	ErrInvalidEdit    = domain.NewValidationError("INVALID_EDIT", "Please provide the current email, a new name and a valid new email.")
)
