package memory

import (
	"context"

	"yojeong/internal/domain"
)

type bookingRepo struct{ s *Store }

func (r bookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	defer r.s.lock()()

	b.ID = r.s.st.nextBookingID
	r.s.st.nextBookingID++
	if b.Status == "" {
		b.Status = domain.BookingPending
	}
	b.User = domain.NormalizeEmail(b.User)
	b.CreatedAt = r.s.stamp(b.CreatedAt)
	r.s.st.bookings = append(r.s.st.bookings, *b)
	return nil
}

func (r bookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	defer r.s.rlock()()

	for _, b := range r.s.st.bookings {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r bookingRepo) GetByFileID(ctx context.Context, fileID string) (*domain.Booking, error) {
	defer r.s.rlock()()

	for _, b := range r.s.st.bookings {
		if fileID != "" && b.FileID == fileID {
			return &b, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r bookingRepo) ListAll(ctx context.Context) ([]domain.Booking, error) {
	defer r.s.rlock()()
	return append([]domain.Booking{}, r.s.st.bookings...), nil
}

func (r bookingRepo) ListByOwner(ctx context.Context, email string) ([]domain.Booking, error) {
	defer r.s.rlock()()

	email = domain.NormalizeEmail(email)
	out := []domain.Booking{}
	for _, b := range r.s.st.bookings {
		if b.User == email {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r bookingRepo) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	defer r.s.lock()()

	for i := range r.s.st.bookings {
		if r.s.st.bookings[i].ID == id {
			r.s.st.bookings[i].Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r bookingRepo) ReassignOwner(ctx context.Context, oldEmail, newEmail, newName string) error {
	defer r.s.lock()()

	oldEmail, newEmail = domain.NormalizeEmail(oldEmail), domain.NormalizeEmail(newEmail)
	for i := range r.s.st.bookings {
		if r.s.st.bookings[i].User == oldEmail {
			r.s.st.bookings[i].User = newEmail
			r.s.st.bookings[i].UserName = newName
		}
	}
	return nil
}

func (r bookingRepo) CountByOwner(ctx context.Context, email string) (int64, error) {
	items, err := r.ListByOwner(ctx, email)
	return int64(len(items)), err
}

type sessionRepo struct{ s *Store }

func (r sessionRepo) Create(ctx context.Context, s *domain.Session) error {
	defer r.s.lock()()

	s.ID = r.s.st.nextSessionID
	r.s.st.nextSessionID++
	if s.Status == "" {
		s.Status = domain.SessionPending
	}
	s.User = domain.NormalizeEmail(s.User)
	s.CreatedAt = r.s.stamp(s.CreatedAt)
	r.s.st.sessions = append(r.s.st.sessions, *s)
	return nil
}

func (r sessionRepo) GetByID(ctx context.Context, id int64) (*domain.Session, error) {
	defer r.s.rlock()()

	for _, s := range r.s.st.sessions {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r sessionRepo) ListAll(ctx context.Context) ([]domain.Session, error) {
	defer r.s.rlock()()
	return append([]domain.Session{}, r.s.st.sessions...), nil
}

func (r sessionRepo) ListByOwner(ctx context.Context, email string) ([]domain.Session, error) {
	defer r.s.rlock()()

	email = domain.NormalizeEmail(email)
	out := []domain.Session{}
	for _, s := range r.s.st.sessions {
		if s.User == email {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r sessionRepo) UpdateStatus(ctx context.Context, id int64, status domain.SessionStatus) error {
	defer r.s.lock()()

	for i := range r.s.st.sessions {
		if r.s.st.sessions[i].ID == id {
			r.s.st.sessions[i].Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r sessionRepo) ReassignOwner(ctx context.Context, oldEmail, newEmail, newName string) error {
	defer r.s.lock()()

	oldEmail, newEmail = domain.NormalizeEmail(oldEmail), domain.NormalizeEmail(newEmail)
	for i := range r.s.st.sessions {
		if r.s.st.sessions[i].User == oldEmail {
			r.s.st.sessions[i].User = newEmail
			r.s.st.sessions[i].UserName = newName
		}
	}
	return nil
}

func (r sessionRepo) CountByOwner(ctx context.Context, email string) (int64, error) {
	items, err := r.ListByOwner(ctx, email)
	return int64(len(items)), err
}

type feedbackRepo struct{ s *Store }

func (r feedbackRepo) Create(ctx context.Context, f *domain.Feedback) error {
	defer r.s.lock()()

	for _, existing := range r.s.st.feedback {
		if existing.ID == f.ID {
			return domain.ErrConflict
		}
	}
	f.UserEmail = domain.NormalizeEmail(f.UserEmail)
	f.CreatedAt = r.s.stamp(f.CreatedAt)
	r.s.st.feedback = append(r.s.st.feedback, *f)
	return nil
}

func (r feedbackRepo) ListAll(ctx context.Context) ([]domain.Feedback, error) {
	defer r.s.rlock()()
	return append([]domain.Feedback{}, r.s.st.feedback...), nil
}

func (r feedbackRepo) ListByOwner(ctx context.Context, email string) ([]domain.Feedback, error) {
	defer r.s.rlock()()

	email = domain.NormalizeEmail(email)
	out := []domain.Feedback{}
	for _, f := range r.s.st.feedback {
		if f.UserEmail == email {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r feedbackRepo) Delete(ctx context.Context, id string) (bool, error) {
	defer r.s.lock()()

	for i, f := range r.s.st.feedback {
		if f.ID == id {
			r.s.st.feedback = append(r.s.st.feedback[:i], r.s.st.feedback[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r feedbackRepo) ReassignOwner(ctx context.Context, oldEmail, newEmail, newName string) error {
	defer r.s.lock()()

	oldEmail, newEmail = domain.NormalizeEmail(oldEmail), domain.NormalizeEmail(newEmail)
	for i := range r.s.st.feedback {
		if r.s.st.feedback[i].UserEmail == oldEmail {
			r.s.st.feedback[i].UserEmail = newEmail
			r.s.st.feedback[i].UserName = newName
		}
	}
	return nil
}

func (r feedbackRepo) CountByOwner(ctx context.Context, email string) (int64, error) {
	items, err := r.ListByOwner(ctx, email)
	return int64(len(items)), err
}
