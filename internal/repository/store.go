package repository

import (
	"context"

	"yojeong/internal/store"

	"gorm.io/gorm"
)

// Store is the SQL backend. Every repository shares the same *gorm.DB, which
// inside Atomic is the transaction handle.
type Store struct {
	db       *gorm.DB
	users    *UserRepository
	bookings *BookingRepository
	sessions *SessionRepository
	feedback *FeedbackRepository
}

var _ store.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		users:    NewUserRepository(db),
		bookings: NewBookingRepository(db),
		sessions: NewSessionRepository(db),
		feedback: NewFeedbackRepository(db),
	}
}

func (s *Store) Users() store.UserRepository { return s.users }
func (s *Store) Bookings() store.BookingRepository { return s.bookings }
func (s *Store) Sessions() store.SessionRepository { return s.sessions }
func (s *Store) Feedback() store.FeedbackRepository { return s.feedback }

func (s *Store) Atomic(ctx context.Context, fn func(tx store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// AutoMigrate creates or updates the portal tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel{},
		&bookingModel{},
		&sessionModel{},
		&feedbackModel{},
	)
}
