// Package transaction provides the GORM-backed ledger repository.
package transaction

import (
	"context"

	"github.com/revobank/revobank/infra/repository/errs"
	domain "github.com/revobank/revobank/pkg/domain/transaction"
	"github.com/revobank/revobank/pkg/dto"
	"github.com/revobank/revobank/pkg/repository"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// New creates a ledger repository bound to the given session.
func New(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	m := toModel(tx)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return errs.MapError(err, domain.ErrTransactionNotFound)
	}
	tx.ID = m.ID
	tx.Timestamp = m.CreatedAt
	return nil
}

func (r *transactionRepository) Get(ctx context.Context, id uint) (*domain.Transaction, error) {
	var m Transaction
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, errs.MapError(err, domain.ErrTransactionNotFound)
	}
	return toDomain(&m)
}

func (r *transactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	var m Transaction
	err := r.db.WithContext(ctx).
		Where("idempotency_key = ?", key).
		First(&m).Error
	if err != nil {
		return nil, errs.MapError(err, domain.ErrTransactionNotFound)
	}
	return toDomain(&m)
}

func (r *transactionRepository) List(ctx context.Context, accountIDs []uint, filter dto.TransactionFilter, page, limit int) (*dto.Page[*domain.Transaction], error) {
	if len(accountIDs) == 0 {
		return dto.NewPage([]*domain.Transaction{}, page, limit, 0), nil
	}

	q := r.db.WithContext(ctx).Model(&Transaction{}).
		Where("account_id IN ? OR recipient_account_id IN ?", accountIDs, accountIDs)
	if filter.AccountID != 0 {
		q = q.Where("account_id = ? OR recipient_account_id = ?", filter.AccountID, filter.AccountID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Start != nil {
		q = q.Where("created_at >= ?", *filter.Start)
	}
	if filter.End != nil {
		q = q.Where("created_at <= ?", *filter.End)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, errs.MapError(err, domain.ErrTransactionNotFound)
	}

	var models []Transaction
	err := q.Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, errs.MapError(err, domain.ErrTransactionNotFound)
	}

	items := make([]*domain.Transaction, 0, len(models))
	for i := range models {
		tx, err := toDomain(&models[i])
		if err != nil {
			return nil, err
		}
		items = append(items, tx)
	}
	return dto.NewPage(items, page, limit, total), nil
}

func (r *transactionRepository) UpdateStatus(ctx context.Context, id uint, status domain.Status) error {
	res := r.db.WithContext(ctx).
		Model(&Transaction{}).
		Where("id = ?", id).
		Update("status", string(status))
	if res.Error != nil {
		return errs.MapError(res.Error, domain.ErrTransactionNotFound)
	}
	if res.RowsAffected == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}
