package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "Pending"
	BookingConfirmed BookingStatus = "Confirmed"
	BookingCancelled BookingStatus = "Cancelled"
)

// Booking is a retouch request backed by an uploaded file.
type Booking struct {
	ID        int64         `json:"id"`
	User      string        `json:"user"`
	UserName  string        `json:"user_name"`
	Service   string        `json:"service"`
	Filename  string        `json:"filename"`
	FileID    string        `json:"file_id,omitempty"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}
