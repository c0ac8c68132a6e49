package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yojeong/internal/domain"
	"yojeong/internal/notify"
	"yojeong/internal/pkg/password"
	"yojeong/internal/store/memory"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, e notify.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func newMemoryService(t *testing.T) *Service {
	t.Helper()
	return NewService(memory.New().Users(), notify.Nop{}, zap.NewNop())
}

func TestService_Signup_Success(t *testing.T) {
	users := new(mockUserRepo)
	notifier := new(mockNotifier)

	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "jane@x.com" && u.Role == domain.RoleUser && u.PasswordHash != "p1"
	})).Return(nil)
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(e notify.Event) bool {
		return e.Type == notify.EventUserSignedUp && e.Subject == "New Studio Member"
	})).Return(nil)

	svc := NewService(users, notifier, zap.NewNop())
	user, err := svc.Signup(context.Background(), SignupRequest{Name: "Jane", Email: " Jane@X.com ", Password: "p1"})

	require.NoError(t, err)
	assert.Equal(t, "jane@x.com", user.Email)
	assert.NoError(t, password.Verify(user.PasswordHash, "p1"))
	users.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestService_Signup_MismatchCheckedBeforeExistence(t *testing.T) {
	users := new(mockUserRepo)
	svc := NewService(users, nil, zap.NewNop())

	_, err := svc.Signup(context.Background(), SignupRequest{
		Name: "Jane", Email: "jane@x.com", Password: "p1", ConfirmPassword: "p2",
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestService_Signup_MissingFields(t *testing.T) {
	svc := newMemoryService(t)

	_, err := svc.Signup(context.Background(), SignupRequest{Name: "Jane", Email: "not-an-email", Password: "p1"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Signup(context.Background(), SignupRequest{Name: "", Email: "jane@x.com", Password: "p1"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_Signup_DuplicateEmail(t *testing.T) {
	svc := newMemoryService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupRequest{Name: "Jane", Email: "jane@x.com", Password: "p1"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, SignupRequest{Name: "Other", Email: "JANE@x.com", Password: "p2"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestService_Authenticate(t *testing.T) {
	svc := newMemoryService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupRequest{Name: "Jane", Email: "jane@x.com", Password: "p1"})
	require.NoError(t, err)
	_, err = svc.EnsureAdmin(ctx, "Admin User", "admin@yojeong.com", "admin123")
	require.NoError(t, err)

	tests := []struct {
		name    string
		email   string
		pass    string
		role    domain.UserRole
		wantErr bool
	}{
		{"user ok", "jane@x.com", "p1", domain.RoleUser, false},
		{"admin ok", "admin@yojeong.com", "admin123", domain.RoleAdmin, false},
		{"wrong password", "jane@x.com", "p2", domain.RoleUser, true},
		{"unknown email", "ghost@x.com", "p1", domain.RoleUser, true},
		{"user on admin surface", "jane@x.com", "p1", domain.RoleAdmin, true},
		{"admin on user surface", "admin@yojeong.com", "admin123", domain.RoleUser, true},
		{"empty password", "jane@x.com", "", domain.RoleUser, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Authenticate(ctx, LoginRequest{Email: tt.email, Password: tt.pass}, tt.role)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.role, user.Role)
		})
	}
}

func TestService_EnsureAdmin_Idempotent(t *testing.T) {
	svc := newMemoryService(t)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "Admin User", "admin@yojeong.com", "admin123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "Admin User", "admin@yojeong.com", "changed")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = svc.Authenticate(ctx, LoginRequest{Email: "admin@yojeong.com", Password: "admin123"}, domain.RoleAdmin)
	assert.NoError(t, err)
}
