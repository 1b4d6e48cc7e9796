// Package user provides the GORM-backed user repository.
package user

import (
	"context"

	"github.com/revobank/revobank/infra/repository/errs"
	domain "github.com/revobank/revobank/pkg/domain/user"
	"github.com/revobank/revobank/pkg/repository"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// New creates a user repository bound to the given session.
func New(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	m := toModel(u)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return errs.MapError(err, domain.ErrUserNotFound)
	}
	u.ID = m.ID
	u.CreatedAt = m.CreatedAt
	u.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uint) (*domain.User, error) {
	var m User
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, errs.MapError(err, domain.ErrUserNotFound)
	}
	return toDomain(&m), nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var m User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&m).Error; err != nil {
		return nil, errs.MapError(err, domain.ErrUserNotFound)
	}
	return toDomain(&m), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		return nil, errs.MapError(err, domain.ErrUserNotFound)
	}
	return toDomain(&m), nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	m := toModel(u)
	if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
		return errs.MapError(err, domain.ErrUserNotFound)
	}
	return nil
}
