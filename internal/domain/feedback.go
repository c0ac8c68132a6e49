package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

type Feedback struct {
	ID        string    `json:"id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	Service   string    `json:"service"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
