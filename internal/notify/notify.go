// Package notify delivers portal events to staff. Delivery is best effort:
// callers never see a publish failure.
package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	EventUserSignedUp    = "user.signed_up"
	EventBookingCreated  = "booking.created"
	EventBookingApproved = "booking.approved"
	EventBookingRejected = "booking.rejected"
	EventSessionBooked   = "session.booked"
	EventSessionUpdated  = "session.updated"
	EventFeedbackPosted  = "feedback.posted"
)

type Event struct {
	Type       string    `json:"type"`
	Subject    string    `json:"subject"`
	Message    string    `json:"message"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewEvent(typ, subject, message string, payload any) Event {
	return Event{
		Type:       typ,
		Subject:    subject,
		Message:    message,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// Fanout hands each event to every sink in turn. Sink errors are logged and dropped.
type Fanout struct {
	sinks   []Notifier
	log     *zap.Logger
	timeout time.Duration
}

func NewFanout(log *zap.Logger, sinks ...Notifier) *Fanout {
	return &Fanout{sinks: sinks, log: log, timeout: 5 * time.Second}
}

func (f *Fanout) Add(n Notifier) {
	f.sinks = append(f.sinks, n)
}

func (f *Fanout) Notify(ctx context.Context, e Event) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
	defer cancel()

	for _, s := range f.sinks {
		if err := s.Notify(ctx, e); err != nil {
			f.log.Warn("notification dropped",
				zap.String("type", e.Type),
				zap.Error(err),
			)
		}
	}
	return nil
}

// LogNotifier writes every event to the structured log.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(_ context.Context, e Event) error {
	l.log.Info("notification",
		zap.String("type", e.Type),
		zap.String("subject", e.Subject),
		zap.String("message", e.Message),
	)
	return nil
}

type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }
