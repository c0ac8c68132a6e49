package repository

import (
	"context"
	"time"

	"yojeong/internal/domain"

	"gorm.io/gorm"
)

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

type feedbackModel struct {
	Seq       int64     `gorm:"column:seq;primaryKey;autoIncrement"`
	ID        string    `gorm:"column:id;size:36;uniqueIndex;not null"`
	UserName  string    `gorm:"column:user_name"`
	UserEmail string    `gorm:"column:user_email;index;not null"`
	Service   string    `gorm:"column:service"`
	Rating    int       `gorm:"column:rating"`
	Comment   string    `gorm:"column:comment;type:text"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (feedbackModel) TableName() string { return "feedback" }

func toDomainFeedback(m feedbackModel) *domain.Feedback {
	return &domain.Feedback{
		ID:        m.ID,
		UserName:  m.UserName,
		UserEmail: m.UserEmail,
		Service:   m.Service,
		Rating:    m.Rating,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
	}
}

func toFeedbackModel(f *domain.Feedback) feedbackModel {
	return feedbackModel{
		ID:        f.ID,
		UserName:  f.UserName,
		UserEmail: domain.NormalizeEmail(f.UserEmail),
		Service:   f.Service,
		Rating:    f.Rating,
		Comment:   f.Comment,
		CreatedAt: f.CreatedAt,
	}
}

func (r *FeedbackRepository) Create(ctx context.Context, f *domain.Feedback) error {
	m := toFeedbackModel(f)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translateError(err)
	}
	*f = *toDomainFeedback(m)
	return nil
}

func (r *FeedbackRepository) ListAll(ctx context.Context) ([]domain.Feedback, error) {
	return r.list(r.db.WithContext(ctx))
}

func (r *FeedbackRepository) ListByOwner(ctx context.Context, email string) ([]domain.Feedback, error) {
	return r.list(r.db.WithContext(ctx).Where("user_email = ?", domain.NormalizeEmail(email)))
}

func (r *FeedbackRepository) list(q *gorm.DB) ([]domain.Feedback, error) {
	var rows []feedbackModel
	if err := q.Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Feedback, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainFeedback(m))
	}
	return out, nil
}

func (r *FeedbackRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&feedbackModel{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *FeedbackRepository) ReassignOwner(ctx context.Context, oldEmail, newEmail, newName string) error {
	return r.db.WithContext(ctx).
		Model(&feedbackModel{}).
		Where("user_email = ?", domain.NormalizeEmail(oldEmail)).
		Updates(map[string]any{"user_email": domain.NormalizeEmail(newEmail), "user_name": newName}).Error
}

func (r *FeedbackRepository) CountByOwner(ctx context.Context, email string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&feedbackModel{}).
		Where("user_email = ?", domain.NormalizeEmail(email)).
		Count(&n).Error
	return n, err
}
