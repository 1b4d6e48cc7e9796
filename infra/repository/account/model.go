package account

import (
	"time"

	"github.com/revobank/revobank/pkg/currency"
	domain "github.com/revobank/revobank/pkg/domain/account"
	"github.com/revobank/revobank/pkg/money"
)

// Account is the persisted form of an account. Balance is stored in the
// smallest currency unit.
type Account struct {
	ID        uint   `gorm:"primaryKey"`
	Number    string `gorm:"column:account_number;type:varchar(16);uniqueIndex;not null"`
	Type      string `gorm:"column:account_type;type:varchar(20);not null"`
	Balance   int64  `gorm:"not null;default:0"`
	Currency  string `gorm:"type:varchar(3);not null;default:'IDR'"`
	Status    string `gorm:"type:varchar(10);not null;default:'active'"`
	UserID    uint   `gorm:"index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string {
	return "accounts"
}

func toModel(a *domain.Account) Account {
	return Account{
		ID:        a.ID,
		Number:    a.Number,
		Type:      string(a.Type),
		Balance:   a.Balance.Amount(),
		Currency:  a.Balance.Currency().String(),
		Status:    string(a.Status),
		UserID:    a.UserID,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toDomain(m *Account) (*domain.Account, error) {
	balance, err := money.FromSmallestUnit(m.Balance, currency.Code(m.Currency))
	if err != nil {
		return nil, err
	}
	return &domain.Account{
		ID:        m.ID,
		Number:    m.Number,
		Type:      domain.Type(m.Type),
		Balance:   balance,
		Status:    domain.Status(m.Status),
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}
