package transaction

import (
	"time"

	"github.com/revobank/revobank/pkg/currency"
	domain "github.com/revobank/revobank/pkg/domain/transaction"
	"github.com/revobank/revobank/pkg/money"
)

// Transaction is the persisted form of a ledger entry. Amount is stored in
// the smallest currency unit.
type Transaction struct {
	ID                 uint    `gorm:"primaryKey"`
	ReferenceNumber    string  `gorm:"type:varchar(20);uniqueIndex;not null"`
	Type               string  `gorm:"type:varchar(20);not null"`
	Amount             int64   `gorm:"not null"`
	Currency           string  `gorm:"type:varchar(3);not null;default:'IDR'"`
	AccountID          uint    `gorm:"index;not null"`
	RecipientAccountID *uint   `gorm:"index"`
	Description        string  `gorm:"type:varchar(200)"`
	Status             string  `gorm:"type:varchar(20);not null;default:'completed'"`
	IdempotencyKey     *string `gorm:"type:varchar(64);uniqueIndex"`
	CreatedAt          time.Time
}

// TableName specifies the table name for the Transaction model.
func (Transaction) TableName() string {
	return "transactions"
}

func toModel(tx *domain.Transaction) Transaction {
	return Transaction{
		ID:                 tx.ID,
		ReferenceNumber:    tx.ReferenceNumber,
		Type:               string(tx.Type),
		Amount:             tx.Amount.Amount(),
		Currency:           tx.Amount.Currency().String(),
		AccountID:          tx.AccountID,
		RecipientAccountID: tx.RecipientAccountID,
		Description:        tx.Description,
		Status:             string(tx.Status),
		IdempotencyKey:     tx.IdempotencyKey,
		CreatedAt:          tx.Timestamp,
	}
}

func toDomain(m *Transaction) (*domain.Transaction, error) {
	amount, err := money.FromSmallestUnit(m.Amount, currency.Code(m.Currency))
	if err != nil {
		return nil, err
	}
	return &domain.Transaction{
		ID:                 m.ID,
		ReferenceNumber:    m.ReferenceNumber,
		Type:               domain.Type(m.Type),
		Amount:             amount,
		AccountID:          m.AccountID,
		RecipientAccountID: m.RecipientAccountID,
		Description:        m.Description,
		Status:             domain.Status(m.Status),
		IdempotencyKey:     m.IdempotencyKey,
		Timestamp:          m.CreatedAt,
	}, nil
}
