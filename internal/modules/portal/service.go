package portal

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"yojeong/internal/domain"
	"yojeong/internal/notify"
	"yojeong/internal/pkg/validator"
)

const feedbackIDAttempts = 3

// Service covers the user-facing actions: dashboard, session booking and feedback.
type Service struct {
	bookings BookingReader
	sessions SessionRepository
	feedback FeedbackRepository
	engine   *domain.StatusEngine
	notifier notify.Notifier
}

func NewService(bookings BookingReader, sessions SessionRepository, feedback FeedbackRepository, engine *domain.StatusEngine, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		bookings: bookings,
		sessions: sessions,
		feedback: feedback,
		engine:   engine,
		notifier: notifier,
	}
}

// Dashboard loads the principal's records from all three collections.
func (s *Service) Dashboard(ctx context.Context, p domain.Principal) (*DashboardView, error) {
	view := &DashboardView{Name: p.Name, Email: p.Email, Today: s.engine.Today()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		view.Bookings, err = s.bookings.ListByOwner(gctx, p.Email)
		return err
	})
	g.Go(func() error {
		var err error
		view.Sessions, err = s.sessions.ListByOwner(gctx, p.Email)
		return err
	})
	g.Go(func() error {
		var err error
		view.Feedback, err = s.feedback.ListByOwner(gctx, p.Email)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}
	return view, nil
}

// BookSession reserves a slot. Past or malformed dates create nothing.
func (s *Service) BookSession(ctx context.Context, p domain.Principal, req BookSessionRequest) (*domain.Session, error) {
	req.Date = strings.TrimSpace(req.Date)
	req.Type = strings.TrimSpace(req.Type)
	req.Photographer = strings.TrimSpace(req.Photographer)
	req.Time = strings.TrimSpace(req.Time)

	errs := validator.Validate(req)
	if _, bad := errs["Date"]; bad {
		return nil, invalidDate(req.Date)
	}
	if err := s.engine.ValidateSessionDate(req.Date); err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, ErrSessionDetails
	}

	session := &domain.Session{
		User:     p.Email,
		UserName: p.Name,
		Service:  fmt.Sprintf("%s (with %s)", req.Type, req.Photographer),
		Date:     req.Date,
		Time:     req.Time,
		Status:   domain.SessionPending,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	_ = s.notifier.Notify(ctx, notify.NewEvent(
		notify.EventSessionBooked,
		"New Session Booked",
		fmt.Sprintf("%s booked %s on %s at %s.", p.Name, session.Service, session.Date, session.Time),
		session,
	))
	return session, nil
}

// SubmitFeedback stores a review under a short random id.
func (s *Service) SubmitFeedback(ctx context.Context, p domain.Principal, req FeedbackRequest) (*domain.Feedback, error) {
	rating, err := ParseRating(req.Rating)
	if err != nil {
		return nil, err
	}
	if validator.Validate(req) != nil {
		return nil, domain.NewValidationError("FEEDBACK_TOO_LONG", "Feedback is too long.")
	}

	fb := &domain.Feedback{
		UserName:  p.Name,
		UserEmail: p.Email,
		Service:   strings.TrimSpace(req.Service),
		Rating:    rating,
		Comment:   strings.TrimSpace(req.Comment),
	}
	for attempt := 0; attempt < feedbackIDAttempts; attempt++ {
		fb.ID = uuid.NewString()[:8]
		err = s.feedback.Create(ctx, fb)
		if !errors.Is(err, domain.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	_ = s.notifier.Notify(ctx, notify.NewEvent(
		notify.EventFeedbackPosted,
		"New Feedback",
		fmt.Sprintf("%s rated %q %d/%d.", p.Name, fb.Service, fb.Rating, domain.MaxRating),
		fb,
	))
	return fb, nil
}

// ParseRating accepts a whole number in [MinRating, MaxRating].
func ParseRating(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < domain.MinRating || n > domain.MaxRating {
		return 0, ErrInvalidRating
	}
	return n, nil
}
