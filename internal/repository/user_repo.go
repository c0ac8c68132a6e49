package repository

import (
	"context"
	"errors"
	"time"

	"yojeong/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	Name         string    `gorm:"column:name"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"column:role;index;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(m userModel) *domain.User {
	return &domain.User{
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		Role:         domain.UserRole(m.Role),
		CreatedAt:    m.CreatedAt,
	}
}

func toUserModel(u *domain.User) userModel {
	return userModel{
		Email:        domain.NormalizeEmail(u.Email),
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translateError(err)
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	err := r.db.WithContext(ctx).
		Where("email = ?", domain.NormalizeEmail(email)).
		First(&m).Error
	if err != nil {
		return nil, translateError(err)
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	var rows []userModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainUser(m))
	}
	return out, nil
}

// Rekey changes the key column in place, so the row is never missing or duplicated.
func (r *UserRepository) Rekey(ctx context.Context, oldEmail, newName, newEmail string) error {
	oldEmail = domain.NormalizeEmail(oldEmail)
	newEmail = domain.NormalizeEmail(newEmail)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if newEmail != oldEmail {
			var taken int64
			if err := tx.Model(&userModel{}).Where("email = ?", newEmail).Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return domain.ErrConflict
			}
		}

		res := tx.Model(&userModel{}).
			Where("email = ?", oldEmail).
			Updates(map[string]any{"email": newEmail, "name": newName})
		if res.Error != nil {
			return translateError(res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *UserRepository) Delete(ctx context.Context, email string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("email = ?", domain.NormalizeEmail(email)).
		Delete(&userModel{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
