package repository

import (
	"context"
	"time"

	"yojeong/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

type sessionModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	User      string    `gorm:"column:user;index;not null"`
	UserName  string    `gorm:"column:user_name"`
	Service   string    `gorm:"column:service"`
	Date      string    `gorm:"column:date;size:10;not null"`
	Time      string    `gorm:"column:time"`
	Status    string    `gorm:"column:status;index;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (sessionModel) TableName() string { return "sessions" }

func toDomainSession(m sessionModel) *domain.Session {
	return &domain.Session{
		ID:        m.ID,
		User:      m.User,
		UserName:  m.UserName,
		Service:   m.Service,
		Date:      m.Date,
		Time:      m.Time,
		Status:    domain.SessionStatus(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

func toSessionModel(s *domain.Session) sessionModel {
	status := s.Status
	if status == "" {
		status = domain.SessionPending
	}
	return sessionModel{
		ID:        s.ID,
		User:      domain.NormalizeEmail(s.User),
		UserName:  s.UserName,
		Service:   s.Service,
		Date:      s.Date,
		Time:      s.Time,
		Status:    string(status),
		CreatedAt: s.CreatedAt,
	}
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	m := toSessionModel(s)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translateError(err)
	}
	*s = *toDomainSession(m)
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*domain.Session, error) {
	var m sessionModel
	// Row lock holds inside Atomic on postgres; the sqlite dialect drops the clause.
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, id).Error; err != nil {
		return nil, translateError(err)
	}
	return toDomainSession(m), nil
}

func (r *SessionRepository) ListAll(ctx context.Context) ([]domain.Session, error) {
	return r.list(r.db.WithContext(ctx))
}

func (r *SessionRepository) ListByOwner(ctx context.Context, email string) ([]domain.Session, error) {
	return r.list(r.db.WithContext(ctx).Where(`"user" = ?`, domain.NormalizeEmail(email)))
}

func (r *SessionRepository) list(q *gorm.DB) ([]domain.Session, error) {
	var rows []sessionModel
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Session, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainSession(m))
	}
	return out, nil
}

func (r *SessionRepository) UpdateStatus(ctx context.Context, id int64, status domain.SessionStatus) error {
	res := r.db.WithContext(ctx).
		Model(&sessionModel{}).
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

func (r *SessionRepository) ReassignOwner(ctx context.Context, oldEmail, newEmail, newName string) error {
	return r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where(`"user" = ?`, domain.NormalizeEmail(oldEmail)).
		Updates(map[string]any{"user": domain.NormalizeEmail(newEmail), "user_name": newName}).Error
}

func (r *SessionRepository) CountByOwner(ctx context.Context, email string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where(`"user" = ?`, domain.NormalizeEmail(email)).
		Count(&n).Error
	return n, err
}
