package domain

import (
	"fmt"
	"strings"
	"time"
)

// TransitionPolicy decides whether a status change is allowed from the current state.
type TransitionPolicy string

const (
	// PolicyPermissive lets any action apply from any state, including
	// reject-after-approve and complete-without-confirm.
	PolicyPermissive TransitionPolicy = "permissive"
	// PolicyStrict only moves records that have not reached a terminal state.
	PolicyStrict TransitionPolicy = "strict"
)

func ParseTransitionPolicy(s string) (TransitionPolicy, error) {
	switch TransitionPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyPermissive:
		return PolicyPermissive, nil
	case PolicyStrict:
		return PolicyStrict, nil
	}
	return "", fmt.Errorf("unknown status policy %q", s)
}

type BookingAction string

const (
	BookingApprove BookingAction = "approve"
	BookingReject  BookingAction = "reject"
)

type SessionAction string

const (
	SessionConfirm  SessionAction = "confirm"
	SessionComplete SessionAction = "complete"
	SessionCancel   SessionAction = "cancel"
)

// StatusEngine owns the booking and session state machines. Session
// Today/Upcoming values are derived lazily from the clock whenever the
// engine is asked; nothing runs in the background.
type StatusEngine struct {
	policy TransitionPolicy
	now    func() time.Time
}

func NewStatusEngine(policy TransitionPolicy, now func() time.Time) *StatusEngine {
	if now == nil {
		now = time.Now
	}
	if policy == "" {
		policy = PolicyPermissive
	}
	return &StatusEngine{policy: policy, now: now}
}

func (e *StatusEngine) Policy() TransitionPolicy { return e.policy }

// Today returns the current calendar date in DateLayout.
func (e *StatusEngine) Today() string {
	return e.now().Format(DateLayout)
}

func (e *StatusEngine) NextBookingStatus(current BookingStatus, action BookingAction) (BookingStatus, error) {
	var next BookingStatus
	switch action {
	case BookingApprove:
		next = BookingConfirmed
	case BookingReject:
		next = BookingCancelled
	default:
		return current, fmt.Errorf("%w: unknown booking action %q", ErrInvalidTransition, action)
	}

	if e.policy == PolicyStrict && current != BookingPending && current != next {
		return current, fmt.Errorf("%w: booking is %s", ErrInvalidTransition, current)
	}
	return next, nil
}

func (e *StatusEngine) NextSessionStatus(s *Session, action SessionAction) (SessionStatus, error) {
	if e.policy == PolicyStrict && isTerminalSession(s.Status) {
		if (action == SessionComplete && s.Status == SessionCompleted) ||
			(action == SessionCancel && s.Status == SessionCancelled) {
			return s.Status, nil
		}
		return s.Status, fmt.Errorf("%w: session is %s", ErrInvalidTransition, s.Status)
	}

	switch action {
	case SessionConfirm:
		return e.scheduledStatus(s.Date), nil
	case SessionComplete:
		return SessionCompleted, nil
	case SessionCancel:
		return SessionCancelled, nil
	}
	return s.Status, fmt.Errorf("%w: unknown session action %q", ErrInvalidTransition, action)
}

// Recompute re-derives Today/Upcoming for a session that is already scheduled.
// Pending, Completed and Cancelled sessions are left alone.
func (e *StatusEngine) Recompute(s *Session) (SessionStatus, bool) {
	if s.Status != SessionUpcoming && s.Status != SessionToday {
		return s.Status, false
	}
	next := e.scheduledStatus(s.Date)
	return next, next != s.Status
}

// ValidateSessionDate accepts today or any later date. The value must already
// be in DateLayout; form input is checked by the isodate validation rule.
func (e *StatusEngine) ValidateSessionDate(date string) error {
	if date < e.Today() {
		return NewValidationError("PAST_DATE", fmt.Sprintf("Error: You cannot book a session for %s.", date))
	}
	return nil
}

func (e *StatusEngine) scheduledStatus(date string) SessionStatus {
	if date == e.Today() {
		return SessionToday
	}
	return SessionUpcoming
}

func isTerminalSession(s SessionStatus) bool {
	return s == SessionCompleted || s == SessionCancelled
}
