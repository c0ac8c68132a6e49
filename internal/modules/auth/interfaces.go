package auth

import (
	"context"

	"yojeong/internal/domain"
)

// UserRepositoryInterface is the part of the identity store auth needs.
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
