package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"yojeong/internal/domain"
	"yojeong/internal/notify"
	"yojeong/internal/pkg/validator"
	"yojeong/internal/store"
)

// Service runs the moderation workflow. Missing ids are silent no-ops.
type Service struct {
	store    store.Store
	engine   *domain.StatusEngine
	notifier notify.Notifier
	log      *zap.Logger
}

func NewService(st store.Store, engine *domain.StatusEngine, notifier notify.Notifier, log *zap.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{store: st, engine: engine, notifier: notifier, log: log}
}

// Panel refreshes Today/Upcoming on every scheduled session and returns all tables.
func (s *Service) Panel(ctx context.Context) (*PanelView, error) {
	view := &PanelView{Today: s.engine.Today(), Policy: string(s.engine.Policy())}

	err := s.store.Atomic(ctx, func(tx store.Store) error {
		sessions, err := tx.Sessions().ListAll(ctx)
		if err != nil {
			return err
		}
		for i := range sessions {
			next, changed := s.engine.Recompute(&sessions[i])
			if !changed {
				continue
			}
			if err := tx.Sessions().UpdateStatus(ctx, sessions[i].ID, next); err != nil {
				return err
			}
			sessions[i].Status = next
		}
		view.Sessions = sessions
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("recompute sessions: %w", err)
	}

	if view.Users, err = s.store.Users().List(ctx); err != nil {
		return nil, err
	}
	if view.Bookings, err = s.store.Bookings().ListAll(ctx); err != nil {
		return nil, err
	}
	if view.Feedback, err = s.store.Feedback().ListAll(ctx); err != nil {
		return nil, err
	}
	return view, nil
}

func (s *Service) ApproveBooking(ctx context.Context, id int64) error {
	return s.moveBooking(ctx, id, domain.BookingApprove)
}

func (s *Service) RejectBooking(ctx context.Context, id int64) error {
	return s.moveBooking(ctx, id, domain.BookingReject)
}

func (s *Service) moveBooking(ctx context.Context, id int64, action domain.BookingAction) error {
	var moved *domain.Booking
	err := s.store.Atomic(ctx, func(tx store.Store) error {
		b, err := tx.Bookings().GetByID(ctx, id)
		if err != nil {
			return err
		}
		next, err := s.engine.NextBookingStatus(b.Status, action)
		if err != nil {
			return err
		}
		if err := tx.Bookings().UpdateStatus(ctx, id, next); err != nil {
			return err
		}
		b.Status = next
		moved = b
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	typ, subject := notify.EventBookingApproved, "Booking Approved"
	if action == domain.BookingReject {
		typ, subject = notify.EventBookingRejected, "Booking Rejected"
	}
	_ = s.notifier.Notify(ctx, notify.NewEvent(typ, subject,
		fmt.Sprintf("Booking ID %d has been %s.", moved.ID, strings.ToLower(string(moved.Status))),
		moved,
	))
	return nil
}

func (s *Service) ConfirmSession(ctx context.Context, id int64) error {
	return s.moveSession(ctx, id, domain.SessionConfirm)
}

func (s *Service) CompleteSession(ctx context.Context, id int64) error {
	return s.moveSession(ctx, id, domain.SessionComplete)
}

func (s *Service) CancelSession(ctx context.Context, id int64) error {
	return s.moveSession(ctx, id, domain.SessionCancel)
}

func (s *Service) moveSession(ctx context.Context, id int64, action domain.SessionAction) error {
	var moved *domain.Session
	err := s.store.Atomic(ctx, func(tx store.Store) error {
		sess, err := tx.Sessions().GetByID(ctx, id)
		if err != nil {
			return err
		}
		next, err := s.engine.NextSessionStatus(sess, action)
		if err != nil {
			return err
		}
		if err := tx.Sessions().UpdateStatus(ctx, id, next); err != nil {
			return err
		}
		sess.Status = next
		moved = sess
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_ = s.notifier.Notify(ctx, notify.NewEvent(notify.EventSessionUpdated, "Session Updated",
		fmt.Sprintf("Session %d for %s is now %s.", moved.ID, moved.UserName, moved.Status),
		moved,
	))
	return nil
}

// EditUser renames and re-keys an account and moves everything it owns to the
// new email in one transaction. An unknown old email is a no-op.
func (s *Service) EditUser(ctx context.Context, req EditUserRequest) error {
	req.OldEmail = domain.NormalizeEmail(req.OldEmail)
	req.NewEmail = domain.NormalizeEmail(req.NewEmail)
	req.NewName = strings.TrimSpace(req.NewName)
	if validator.Validate(req) != nil {
		return ErrInvalidEdit
	}

	err := s.store.Atomic(ctx, func(tx store.Store) error {
		if err := tx.Users().Rekey(ctx, req.OldEmail, req.NewName, req.NewEmail); err != nil {
			return err
		}
		if err := tx.Bookings().ReassignOwner(ctx, req.OldEmail, req.NewEmail, req.NewName); err != nil {
			return err
		}
		if err := tx.Sessions().ReassignOwner(ctx, req.OldEmail, req.NewEmail, req.NewName); err != nil {
			return err
		}
		return tx.Feedback().ReassignOwner(ctx, req.OldEmail, req.NewEmail, req.NewName)
	})
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case errors.Is(err, domain.ErrConflict):
		return ErrEmailTaken
	}
	return err
}

// DeleteUser removes an account that owns no records. Accounts with bookings,
// sessions or feedback are refused with ErrUserHasRecords.
func (s *Service) DeleteUser(ctx context.Context, actor domain.Principal, email string) error {
	email = domain.NormalizeEmail(email)
	if email == domain.NormalizeEmail(actor.Email) {
		return ErrDeleteSelf
	}

	return s.store.Atomic(ctx, func(tx store.Store) error {
		counts := []func(context.Context, string) (int64, error){
			tx.Bookings().CountByOwner,
			tx.Sessions().CountByOwner,
			tx.Feedback().CountByOwner,
		}
		for _, count := range counts {
			n, err := count(ctx, email)
			if err != nil {
				return err
			}
			if n > 0 {
				return ErrUserHasRecords
			}
		}

		deleted, err := tx.Users().Delete(ctx, email)
		if err != nil {
			return err
		}
		if deleted {
			s.log.Info("user deleted", zap.String("email", email), zap.String("by", actor.Email))
		}
		return nil
	})
}

// DeleteFeedback removes exactly one review. Unknown ids are a no-op.
func (s *Service) DeleteFeedback(ctx context.Context, id string) error {
	_, err := s.store.Feedback().Delete(ctx, strings.TrimSpace(id))
	return err
}
