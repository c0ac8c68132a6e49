package portal

import (
	"context"

	"yojeong/internal/domain"
)

type BookingReader interface {
	ListByOwner(ctx context.Context, email string) ([]domain.Booking, error)
}

type SessionRepository interface {
	Create(ctx context.Context, s *domain.Session) error
	ListByOwner(ctx context.Context, email string) ([]domain.Session, error)
}

type FeedbackRepository interface {
	Create(ctx context.Context, f *domain.Feedback) error
	ListByOwner(ctx context.Context, email string) ([]domain.Feedback, error)
}
