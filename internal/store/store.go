// Package store declares the persistence contracts shared by the in-memory
// and SQL backends.
package store

import (
	"context"

	"yojeong/internal/domain"
)

// UserRepository is the identity store. Emails are unique keys.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	// Rekey replaces the record at oldEmail with one at newEmail carrying newName.
	// Returns domain.ErrNotFound when oldEmail is absent and domain.ErrConflict
	// when newEmail belongs to another user.
	Rekey(ctx context.Context, oldEmail, newName, newEmail string) error
	Delete(ctx context.Context, email string) (bool, error)
}

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByFileID(ctx context.Context, fileID string) (*domain.Booking, error)
	ListAll(ctx context.Context) ([]domain.Booking, error)
	ListByOwner(ctx context.Context, email string) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	ReassignOwner(ctx context.Context, oldEmail, newEmail, newName string) error
	CountByOwner(ctx context.Context, email string) (int64, error)
}

type SessionRepository interface {
	Create(ctx context.Context, s *domain.Session) error
	GetByID(ctx context.Context, id int64) (*domain.Session, error)
	ListAll(ctx context.Context) ([]domain.Session, error)
	ListByOwner(ctx context.Context, email string) ([]domain.Session, error)
	UpdateStatus(ctx context.Context, id int64, status domain.SessionStatus) error
	ReassignOwner(ctx context.Context, oldEmail, newEmail, newName string) error
	CountByOwner(ctx context.Context, email string) (int64, error)
}

type FeedbackRepository interface {
	Create(ctx context.Context, f *domain.Feedback) error
	ListAll(ctx context.Context) ([]domain.Feedback, error)
	ListByOwner(ctx context.Context, email string) ([]domain.Feedback, error)
	Delete(ctx context.Context, id string) (bool, error)
	ReassignOwner(ctx context.Context, oldEmail, newEmail, newName string) error
	CountByOwner(ctx context.Context, email string) (int64, error)
}

// Store groups the four record collections behind one backend.
type Store interface {
	Users() UserRepository
	Bookings() BookingRepository
	Sessions() SessionRepository
	Feedback() FeedbackRepository
	// Atomic runs fn against a transactional view of the store. Every write made
	// through tx is discarded when fn returns an error.
	Atomic(ctx context.Context, fn func(tx Store) error) error
}

// Backend names accepted by STORE_BACKEND.
const (
	BackendMemory = "memory"
	BackendSQL    = "sql"
)
