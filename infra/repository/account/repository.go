// Package account provides the GORM-backed account repository.
package account

import (
	"context"

	"github.com/revobank/revobank/infra/repository/errs"
	domain "github.com/revobank/revobank/pkg/domain/account"
	"github.com/revobank/revobank/pkg/dto"
	"github.com/revobank/revobank/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountRepository struct {
	db *gorm.DB
}

// New creates an account repository bound to the given session.
func New(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, a *domain.Account) error {
	m := toModel(a)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return errs.MapError(err, domain.ErrAccountNotFound)
	}
	a.ID = m.ID
	a.CreatedAt = m.CreatedAt
	a.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *accountRepository) Get(ctx context.Context, id uint) (*domain.Account, error) {
	var m Account
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, errs.MapError(err, domain.ErrAccountNotFound)
	}
	return toDomain(&m)
}

// GetForUpdate locks the account row with SELECT ... FOR UPDATE NOWAIT so
// lock waits stay bounded; contention surfaces as ErrLockNotAvailable and
// the engine retries with backoff.
func (r *accountRepository) GetForUpdate(ctx context.Context, id uint) (*domain.Account, error) {
	var m Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "NOWAIT"}).
		First(&m, id).Error
	if err != nil {
		return nil, errs.MapError(err, domain.ErrAccountNotFound)
	}
	return toDomain(&m)
}

func (r *accountRepository) ListByUser(ctx context.Context, userID uint, filter dto.AccountFilter) ([]*domain.Account, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Type != "" {
		q = q.Where("account_type = ?", filter.Type)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var models []Account
	if err := q.Order("id").Find(&models).Error; err != nil {
		return nil, errs.MapError(err, domain.ErrAccountNotFound)
	}
	accounts := make([]*domain.Account, 0, len(models))
	for i := range models {
		a, err := toDomain(&models[i])
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func (r *accountRepository) IDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&Account{}).
		Where("user_id = ?", userID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, errs.MapError(err, domain.ErrAccountNotFound)
	}
	return ids, nil
}

func (r *accountRepository) UpdateBalance(ctx context.Context, id uint, balance int64) error {
	res := r.db.WithContext(ctx).
		Model(&Account{}).
		Where("id = ?", id).
		Update("balance", balance)
	if res.Error != nil {
		return errs.MapError(res.Error, domain.ErrAccountNotFound)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) UpdateStatus(ctx context.Context, id uint, status domain.Status) error {
	res := r.db.WithContext(ctx).
		Model(&Account{}).
		Where("id = ?", id).
		Update("status", string(status))
	if res.Error != nil {
		return errs.MapError(res.Error, domain.ErrAccountNotFound)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&Account{}, id)
	if res.Error != nil {
		return errs.MapError(res.Error, domain.ErrAccountNotFound)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
