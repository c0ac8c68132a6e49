package portal

import "yojeong/internal/domain"

type BookSessionRequest struct {
	Date         string `form:"session_date" json:"session_date" validate:"required,isodate"`
	Type         string `form:"session_type" json:"session_type" validate:"required,max=100"`
	Photographer string `form:"photographer" json:"photographer" validate:"required,max=100"`
	Time         string `form:"session_time" json:"session_time" validate:"required,max=20"`
}

type FeedbackRequest struct {
	Service string `form:"service" json:"service" validate:"max=200"`
	Rating  string `form:"rating" json:"rating"`
	Comment string `form:"comment" json:"comment" validate:"max=2000"`
}

// DashboardView is everything the signed-in user owns.
type DashboardView struct {
	Name     string            `json:"name"`
	Email    string            `json:"email"`
	Bookings []domain.Booking  `json:"bookings"`
	Sessions []domain.Session  `json:"sessions"`
	Feedback []domain.Feedback `json:"feedback"`
	Today    string            `json:"today"`
	Flash    string            `json:"flash,omitempty"`
}
