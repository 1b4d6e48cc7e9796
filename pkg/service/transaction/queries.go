package transaction

import (
	"context"

	"github.com/revobank/revobank/pkg/domain/account"
	"github.com/revobank/revobank/pkg/domain/transaction"
	"github.com/revobank/revobank/pkg/domain/user"
	"github.com/revobank/revobank/pkg/dto"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Get returns a ledger entry. Without transaction:view_all the caller must
// hold the source or recipient account; other entries are reported as not
// found.
func (s *Service) Get(ctx context.Context, actor *user.User, id uint) (*transaction.Transaction, error) {
	ledger, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	entry, err := ledger.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.HasPermission(user.PermTransactionViewAll) {
		return entry, nil
	}

	accounts, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	ids, err := accounts.IDsByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	for _, accountID := range ids {
		if entry.AccountID == accountID {
			return entry, nil
		}
		if entry.RecipientAccountID != nil && *entry.RecipientAccountID == accountID {
			return entry, nil
		}
	}
	return nil, transaction.ErrTransactionNotFound
}

// List returns a page of ledger entries involving the caller's accounts,
// newest first. The account filter narrows to one account, which must be
// visible to the caller.
func (s *Service) List(
	ctx context.Context,
	actor *user.User,
	filter dto.TransactionFilter,
	page, limit int,
) (*dto.Page[*transaction.Transaction], error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if filter.Type != "" {
		if _, err := transaction.ParseType(filter.Type); err != nil {
			return nil, err
		}
	}
	if filter.Status != "" {
		if _, err := transaction.ParseStatus(filter.Status); err != nil {
			return nil, err
		}
	}

	accounts, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	var scope []uint
	if filter.AccountID != 0 {
		a, err := accounts.Get(ctx, filter.AccountID)
		if err != nil {
			return nil, err
		}
		if !actor.HasPermission(user.PermAccountViewAll) {
			if err := a.ValidateOwner(actor.ID); err != nil {
				return nil, account.ErrAccountNotFound
			}
		}
		scope = []uint{filter.AccountID}
	} else {
		scope, err = accounts.IDsByUser(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if len(scope) == 0 {
			return dto.NewPage([]*transaction.Transaction{}, page, limit, 0), nil
		}
	}

	ledger, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	return ledger.List(ctx, scope, filter, page, limit)
}
