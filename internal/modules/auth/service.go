package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"yojeong/internal/domain"
	"yojeong/internal/notify"
	"yojeong/internal/pkg/password"
	"yojeong/internal/pkg/validator"
)

// Service owns signup and credential checks for both login surfaces.
type Service struct {
	users    UserRepositoryInterface
	notifier notify.Notifier
	log      *zap.Logger
}

func NewService(users UserRepositoryInterface, notifier notify.Notifier, log *zap.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{users: users, notifier: notifier, log: log}
}

// Signup creates a user-role account. A supplied confirmation is checked
// before anything else, then required fields, then email uniqueness.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*domain.User, error) {
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		return nil, ErrPasswordMismatch
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = domain.NormalizeEmail(req.Email)
	if errs := validator.Validate(req); errs != nil {
		return nil, ErrMissingFields
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	_ = s.notifier.Notify(ctx, notify.NewEvent(
		notify.EventUserSignedUp,
		"New Studio Member",
		fmt.Sprintf("%s (%s) just joined Yojeong Photograph.", user.Name, user.Email),
		domain.PrincipalOf(user),
	))
	return user, nil
}

// Authenticate returns the account only when the email exists, the password
// verifies and the role matches. Every other outcome is ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, req LoginRequest, role domain.UserRole) (*domain.User, error) {
	if validator.Validate(req) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := password.Verify(user.PasswordHash, req.Password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if user.Role != role {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// EnsureAdmin seeds an admin account if the email is free. It reports whether
// an account was created. An existing account is left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, plain string) (bool, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || plain == "" {
		return false, nil
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}

	hash, err := password.Hash(plain)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	err = s.users.Create(ctx, &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	})
	if errors.Is(err, domain.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.log.Info("admin account seeded", zap.String("email", email))
	return true, nil
}
