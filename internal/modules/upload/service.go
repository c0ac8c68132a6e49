package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"yojeong/internal/blob"
	"yojeong/internal/domain"
	"yojeong/internal/notify"
)

// Service handles retouch uploads and downloads of their files.
type Service struct {
	bookings BookingRepository
	blobs    blob.Store
	notifier notify.Notifier
	log      *zap.Logger
}

func NewService(bookings BookingRepository, blobs blob.Store, notifier notify.Notifier, log *zap.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{bookings: bookings, blobs: blobs, notifier: notifier, log: log}
}

// Book validates and stores the file, then records a Pending booking that
// references it. If the booking cannot be written the blob is removed again.
func (s *Service) Book(ctx context.Context, p domain.Principal, req BookRequest, f File) (*domain.Booking, error) {
	if err := blob.ValidateFile(f.Name, f.Size); err != nil {
		return nil, err
	}

	name := blob.SanitizeName(f.Name)
	obj := blob.Object{
		ID:          blob.NewID(),
		Name:        name,
		ContentType: blob.ContentTypeFor(name),
		Size:        f.Size,
	}
	if err := s.blobs.Put(ctx, obj, f.Body); err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		User:     p.Email,
		UserName: p.Name,
		Service:  "Retouch: " + strings.TrimSpace(req.Service),
		Filename: name,
		FileID:   obj.ID,
		Status:   domain.BookingPending,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		if derr := s.blobs.Delete(context.WithoutCancel(ctx), obj.ID); derr != nil {
			s.log.Error("orphaned upload", zap.String("file_id", obj.ID), zap.Error(derr))
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	_ = s.notifier.Notify(ctx, notify.NewEvent(
		notify.EventBookingCreated,
		"New Retouch Request",
		fmt.Sprintf("%s uploaded %s for %s.", p.Name, booking.Filename, booking.Service),
		booking,
	))
	return booking, nil
}

// Download opens the blob behind fileID. Users only see files attached to
// their own bookings; anything else is reported as not found.
func (s *Service) Download(ctx context.Context, p domain.Principal, fileID string) (*domain.Booking, io.ReadCloser, error) {
	booking, err := s.bookings.GetByFileID(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	if !p.Is(domain.RoleAdmin) && booking.User != p.Email {
		return nil, nil, domain.ErrNotFound
	}

	body, err := s.blobs.Get(ctx, fileID)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return booking, body, nil
}
