package admin

import "yojeong/internal/domain"

type EditUserRequest struct {
	OldEmail string `form:"old_email" json:"old_email" validate:"required"`
	NewName  string `form:"new_name" json:"new_name" validate:"required,max=100"`
	NewEmail string `form:"new_email" json:"new_email" validate:"required,email"`
}

// PanelView is the full admin table set after session statuses are refreshed.
type PanelView struct {
	Users    []domain.User     `json:"users"`
	Bookings []domain.Booking  `json:"bookings"`
	Sessions []domain.Session  `json:"sessions"`
	Feedback []domain.Feedback `json:"feedback"`
	Today    string            `json:"today"`
	Policy   string            `json:"status_policy"`
	Flash    string            `json:"flash,omitempty"`
}
