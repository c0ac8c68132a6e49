package upload

import (
	"context"

	"yojeong/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByFileID(ctx context.Context, fileID string) (*domain.Booking, error)
}
