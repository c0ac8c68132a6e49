package repository

import (
	"context"
	"time"

	"yojeong/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	User      string    `gorm:"column:user;index;not null"`
	UserName  string    `gorm:"column:user_name"`
	Service   string    `gorm:"column:service"`
	Filename  string    `gorm:"column:filename"`
	FileID    *string   `gorm:"column:file_id;index"`
	Status    string    `gorm:"column:status;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	var fileID string
	if m.FileID != nil {
		fileID = *m.FileID
	}

	return &domain.Booking{
		ID:        m.ID,
		User:      m.User,
		UserName:  m.UserName,
		Service:   m.Service,
		Filename:  m.Filename,
		FileID:    fileID,
		Status:    domain.BookingStatus(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	var fileID *string
	if b.FileID != "" {
		v := b.FileID
		fileID = &v
	}
	status := b.Status
	if status == "" {
		status = domain.BookingPending
	}

	return bookingModel{
		ID:        b.ID,
		User:      domain.NormalizeEmail(b.User),
		UserName:  b.UserName,
		Service:   b.Service,
		Filename:  b.Filename,
		FileID:    fileID,
		Status:    string(status),
		CreatedAt: b.CreatedAt,
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translateError(err)
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	// Row lock holds inside Atomic on postgres; the sqlite dialect drops the clause.
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, id).Error; err != nil {
		return nil, translateError(err)
	}
	return toDomainBooking(m), nil
}

func (r *BookingRepository) GetByFileID(ctx context.Context, fileID string) (*domain.Booking, error) {
	if fileID == "" {
		return nil, domain.ErrNotFound
	}
	var m bookingModel
	if err := r.db.WithContext(ctx).Where("file_id = ?", fileID).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return toDomainBooking(m), nil
}

func (r *BookingRepository) ListAll(ctx context.Context) ([]domain.Booking, error) {
	return r.list(r.db.WithContext(ctx))
}

func (r *BookingRepository) ListByOwner(ctx context.Context, email string) ([]domain.Booking, error) {
	return r.list(r.db.WithContext(ctx).Where(`"user" = ?`, domain.NormalizeEmail(email)))
}

func (r *BookingRepository) list(q *gorm.DB) ([]domain.Booking, error) {
	var rows []bookingModel
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	res := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ?", id).
		Update("status", string(status))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BookingRepository) ReassignOwner(ctx context.Context, oldEmail, newEmail, newName string) error {
	return r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where(`"user" = ?`, domain.NormalizeEmail(oldEmail)).
		Updates(map[string]any{"user": domain.NormalizeEmail(newEmail), "user_name": newName}).Error
}

func (r *BookingRepository) CountByOwner(ctx context.Context, email string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where(`"user" = ?`, domain.NormalizeEmail(email)).
		Count(&n).Error
	return n, err
}
