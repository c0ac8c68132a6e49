package domain

import "time"

type SessionStatus string

const (
	SessionPending   SessionStatus = "Pending"
	SessionUpcoming  SessionStatus = "Upcoming"
	SessionToday     SessionStatus = "Today"
	SessionCompleted SessionStatus = "Completed"
	SessionCancelled SessionStatus = "Cancelled"
)

// DateLayout is the calendar form used for session dates. Values in this
// layout order correctly under plain string comparison.
const DateLayout = "2006-01-02"

// Session is a reserved photography slot.
type Session struct {
	ID        int64         `json:"id"`
	User      string        `json:"user"`
	UserName  string        `json:"user_name"`
	Service   string        `json:"service"`
	Date      string        `json:"date"`
	Time      string        `json:"time"`
	Status    SessionStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}
