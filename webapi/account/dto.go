package account

import (
	"github.com/revobank/revobank/pkg/domain/account"
	"github.com/revobank/revobank/pkg/dto"
)

// CreateAccountRequest is the payload for opening an account.
type CreateAccountRequest struct {
	AccountType    string  `json:"account_type" validate:"required"`
	InitialDeposit float64 `json:"initial_deposit" validate:"required,gt=0"`
	Currency       string  `json:"currency" validate:"omitempty,len=3"`
}

// UpdateAccountRequest is the payload for changing an account's status.
type UpdateAccountRequest struct {
	Status string `json:"status" validate:"required"`
}

func toRead(a *account.Account) dto.AccountRead {
	min, err := a.MinimumBalance()
	minFloat := 0.0
	if err == nil {
		minFloat = min.Float()
	}
	return dto.AccountRead{
		ID:             a.ID,
		AccountNumber:  a.Number,
		AccountType:    string(a.Type),
		Balance:        a.Balance.Float(),
		Currency:       a.Balance.Currency().String(),
		Status:         string(a.Status),
		MinimumBalance: minFloat,
		Description:    a.Type.Description(),
		CreatedAt:      a.CreatedAt,
	}
}

func toReadList(accounts []*account.Account) []dto.AccountRead {
	out := make([]dto.AccountRead, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toRead(a))
	}
	return out
}
