// Package memory keeps every collection in process memory behind a single
// RWMutex. It backs local runs and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"yojeong/internal/domain"
	"yojeong/internal/store"
)

const (
	firstBookingID int64 = 1
	firstSessionID int64 = 1000
)

type state struct {
	users         map[string]domain.User
	bookings      []domain.Booking
	sessions      []domain.Session
	feedback      []domain.Feedback
	nextBookingID int64
	nextSessionID int64
}

func (s *state) clone() *state {
	c := &state{
		users:         make(map[string]domain.User, len(s.users)),
		bookings:      append([]domain.Booking(nil), s.bookings...),
		sessions:      append([]domain.Session(nil), s.sessions...),
		feedback:      append([]domain.Feedback(nil), s.feedback...),
		nextBookingID: s.nextBookingID,
		nextSessionID: s.nextSessionID,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

type Store struct {
	mu   *sync.RWMutex
	st   *state
	inTx bool
	now  func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		mu: &sync.RWMutex{},
		st: &state{
			users:         make(map[string]domain.User),
			nextBookingID: firstBookingID,
			nextSessionID: firstSessionID,
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Users() store.UserRepository { return userRepo{s} }
func (s *Store) Bookings() store.BookingRepository { return bookingRepo{s} }
func (s *Store) Sessions() store.SessionRepository { return sessionRepo{s} }
func (s *Store) Feedback() store.FeedbackRepository { return feedbackRepo{s} }

// Atomic holds the write lock for the whole of fn. Repositories reached
// through tx skip locking; on error the pre-call snapshot is restored.
func (s *Store) Atomic(ctx context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	tx := &Store{mu: s.mu, st: s.st, inTx: true, now: s.now}
	if err := fn(tx); err != nil {
		*s.st = *snapshot
		return err
	}
	return nil
}

func (s *Store) rlock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) stamp(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t
}

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, u *domain.User) error {
	defer r.s.lock()()

	email := domain.NormalizeEmail(u.Email)
	if _, ok := r.s.st.users[email]; ok {
		return domain.ErrConflict
	}
	u.Email = email
	u.CreatedAt = r.s.stamp(u.CreatedAt)
	r.s.st.users[email] = *u
	return nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	defer r.s.rlock()()

	u, ok := r.s.st.users[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) List(ctx context.Context) ([]domain.User, error) {
	defer r.s.rlock()()

	out := make([]domain.User, 0, len(r.s.st.users))
	for _, u := range r.s.st.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Email < out[j].Email
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r userRepo) Rekey(ctx context.Context, oldEmail, newName, newEmail string) error {
	defer r.s.lock()()

	oldEmail = domain.NormalizeEmail(oldEmail)
	newEmail = domain.NormalizeEmail(newEmail)

	u, ok := r.s.st.users[oldEmail]
	if !ok {
		return domain.ErrNotFound
	}
	if newEmail != oldEmail {
		if _, taken := r.s.st.users[newEmail]; taken {
			return domain.ErrConflict
		}
	}

	delete(r.s.st.users, oldEmail)
	u.Email = newEmail
	u.Name = newName
	r.s.st.users[newEmail] = u
	return nil
}

func (r userRepo) Delete(ctx context.Context, email string) (bool, error) {
	defer r.s.lock()()

	email = domain.NormalizeEmail(email)
	if _, ok := r.s.st.users[email]; !ok {
		return false, nil
	}
	delete(r.s.st.users, email)
	return true, nil
}
