package transaction

import (
	"github.com/revobank/revobank/pkg/domain/transaction"
	"github.com/revobank/revobank/pkg/dto"
)

// DepositRequest is the payload for a deposit.
type DepositRequest struct {
	AccountID      uint    `json:"account_id" validate:"required,min=1"`
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	Currency       string  `json:"currency" validate:"omitempty,len=3"`
	Description    string  `json:"description" validate:"omitempty,max=200"`
	IdempotencyKey *string `json:"idempotency_key" validate:"omitempty,min=8,max=64"`
}

// WithdrawRequest is the payload for a withdrawal.
type WithdrawRequest struct {
	AccountID      uint    `json:"account_id" validate:"required,min=1"`
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	Currency       string  `json:"currency" validate:"omitempty,len=3"`
	Description    string  `json:"description" validate:"omitempty,max=200"`
	IdempotencyKey *string `json:"idempotency_key" validate:"omitempty,min=8,max=64"`
}

// TransferRequest is the payload for a transfer between two accounts.
type TransferRequest struct {
	FromAccountID  uint    `json:"from_account_id" validate:"required,min=1"`
	ToAccountID    uint    `json:"to_account_id" validate:"required,min=1"`
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	Currency       string  `json:"currency" validate:"omitempty,len=3"`
	Description    string  `json:"description" validate:"omitempty,max=200"`
	IdempotencyKey *string `json:"idempotency_key" validate:"omitempty,min=8,max=64"`
}

func toRead(tx *transaction.Transaction) dto.TransactionRead {
	return dto.TransactionRead{
		ID:                 tx.ID,
		ReferenceNumber:    tx.ReferenceNumber,
		Type:               string(tx.Type),
		Amount:             tx.Amount.Float(),
		Currency:           tx.Amount.Currency().String(),
		Description:        tx.Description,
		Status:             string(tx.Status),
		AccountID:          tx.AccountID,
		RecipientAccountID: tx.RecipientAccountID,
		Timestamp:          tx.Timestamp,
	}
}

func toReadPage(page *dto.Page[*transaction.Transaction]) *dto.Page[dto.TransactionRead] {
	items := make([]dto.TransactionRead, 0, len(page.Items))
	for _, tx := range page.Items {
		items = append(items, toRead(tx))
	}
	return &dto.Page[dto.TransactionRead]{
		Items:      items,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
		HasNext:    page.HasNext,
		HasPrev:    page.HasPrev,
	}
}
