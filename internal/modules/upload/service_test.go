package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yojeong/internal/blob"
	"yojeong/internal/domain"
	"yojeong/internal/store/memory"
)

var (
	jane  = domain.Principal{Name: "Jane", Email: "jane@x.com", Role: domain.RoleUser}
	tom   = domain.Principal{Name: "Tom", Email: "tom@x.com", Role: domain.RoleUser}
	admin = domain.Principal{Name: "Admin User", Email: "admin@yojeong.com", Role: domain.RoleAdmin}
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *mockBookingRepo) GetByFileID(ctx context.Context, fileID string) (*domain.Booking, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func file(name string, size int) File {
	return File{Name: name, Size: int64(size), Body: bytes.NewReader(bytes.Repeat([]byte{'x'}, size))}
}

func TestService_Book_Success(t *testing.T) {
	st := memory.New()
	blobs := blob.NewMemoryStore()
	svc := NewService(st.Bookings(), blobs, nil, zap.NewNop())
	ctx := context.Background()

	b, err := svc.Book(ctx, jane, BookRequest{Service: "Skin"}, file("My Photo.JPG", 2048))
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, "Retouch: Skin", b.Service)
	assert.Equal(t, "My_Photo.JPG", b.Filename)
	assert.NotEmpty(t, b.FileID)
	assert.Equal(t, 1, blobs.Len())

	mine, err := st.Bookings().ListByOwner(ctx, jane.Email)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := st.Bookings().ListByOwner(ctx, tom.Email)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestService_Book_RejectsBadFiles(t *testing.T) {
	tests := []struct {
		name string
		f    File
		code string
	}{
		{"too large", file("photo.png", 200*1024), "FILE_TOO_LARGE"},
		{"exe small", file("setup.exe", 10), "INVALID_FILE_FORMAT"},
		{"exe large", file("setup.exe", 200*1024), "INVALID_FILE_FORMAT"},
		{"no extension", file("photo", 10), "INVALID_FILE_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := memory.New()
			blobs := blob.NewMemoryStore()
			svc := NewService(st.Bookings(), blobs, nil, zap.NewNop())

			_, err := svc.Book(context.Background(), jane, BookRequest{Service: "Skin"}, tt.f)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.code, verr.Code)

			all, _ := st.Bookings().ListAll(context.Background())
			assert.Empty(t, all)
			assert.Equal(t, 0, blobs.Len())
		})
	}
}

func TestService_Book_UnderstatedSizeStillCapped(t *testing.T) {
	st := memory.New()
	blobs := blob.NewMemoryStore()
	svc := NewService(st.Bookings(), blobs, nil, zap.NewNop())

	f := File{Name: "photo.png", Size: 10, Body: strings.NewReader(strings.Repeat("x", 200*1024))}
	_, err := svc.Book(context.Background(), jane, BookRequest{}, f)
	assert.ErrorIs(t, err, domain.ErrValidation)

	all, _ := st.Bookings().ListAll(context.Background())
	assert.Empty(t, all)
	assert.Equal(t, 0, blobs.Len())
}

func TestService_Book_CompensatesOnBookingFailure(t *testing.T) {
	repo := new(mockBookingRepo)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	blobs := blob.NewMemoryStore()
	svc := NewService(repo, blobs, nil, zap.NewNop())

	_, err := svc.Book(context.Background(), jane, BookRequest{Service: "Skin"}, file("photo.png", 512))
	assert.ErrorContains(t, err, "db down")
	assert.Equal(t, 0, blobs.Len())
	repo.AssertExpectations(t)
}

func TestService_Download(t *testing.T) {
	st := memory.New()
	blobs := blob.NewMemoryStore()
	svc := NewService(st.Bookings(), blobs, nil, zap.NewNop())
	ctx := context.Background()

	b, err := svc.Book(ctx, jane, BookRequest{Service: "Skin"}, file("photo.png", 64))
	require.NoError(t, err)

	for _, p := range []domain.Principal{jane, admin} {
		got, body, err := svc.Download(ctx, p, b.FileID)
		require.NoError(t, err)
		data, err := io.ReadAll(body)
		require.NoError(t, err)
		require.NoError(t, body.Close())
		assert.Len(t, data, 64)
		assert.Equal(t, "photo.png", got.Filename)
	}

	_, _, err = svc.Download(ctx, tom, b.FileID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, _, err = svc.Download(ctx, jane, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, blobs.Delete(ctx, b.FileID))
	_, _, err = svc.Download(ctx, jane, b.FileID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
