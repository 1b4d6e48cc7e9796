package transaction

import (
	"context"
	"time"

	"github.com/revobank/revobank/pkg/currency"
	"github.com/revobank/revobank/pkg/domain/account"
	"github.com/revobank/revobank/pkg/domain/transaction"
	"github.com/revobank/revobank/pkg/domain/user"
	"github.com/revobank/revobank/pkg/money"
	"github.com/revobank/revobank/pkg/repository"
)

// parseAmount builds a positive money value for an engine operation.
func parseAmount(amount float64, currencyCode string) (money.Money, error) {
	m, err := money.New(amount, currency.Code(currencyCode))
	if err != nil {
		return money.Money{}, err
	}
	if !m.IsPositive() {
		return money.Money{}, transaction.ErrInvalidAmount
	}
	return m, nil
}

// Deposit credits an account and records a completed ledger entry. The
// balance mutation and the entry commit or roll back together.
func (s *Service) Deposit(
	ctx context.Context,
	actor *user.User,
	accountID uint,
	amount float64,
	currencyCode, description string,
	idemKey *string,
) (*transaction.Transaction, error) {
	started := time.Now()
	if !actor.HasPermission(user.PermTransactionCreate) {
		return nil, user.ErrPermissionDenied
	}
	m, err := parseAmount(amount, currencyCode)
	if err != nil {
		return nil, err
	}
	if prior, err := s.replay(ctx, idemKey); err != nil {
		return nil, err
	} else if prior != nil {
		return prior, nil
	}

	entry, err := s.run(ctx, idemKey, func(uow repository.UnitOfWork) (*transaction.Transaction, error) {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return nil, err
		}
		ledger, err := uow.TransactionRepository()
		if err != nil {
			return nil, err
		}
		a, err := lockAccount(ctx, accounts, actor, accountID, true)
		if err != nil {
			return nil, err
		}
		if err := a.Credit(m); err != nil {
			return nil, err
		}
		if err := accounts.UpdateBalance(ctx, a.ID, a.Balance.Amount()); err != nil {
			return nil, err
		}
		entry, err := transaction.New(transaction.TypeDeposit, m, a.ID, transaction.StatusCompleted, description)
		if err != nil {
			return nil, err
		}
		entry.IdempotencyKey = idemKey
		if err := ledger.Create(ctx, entry); err != nil {
			return nil, err
		}
		return entry, nil
	})
	if err != nil {
		s.record(transaction.TypeDeposit, "failed", started)
		return nil, err
	}
	s.record(transaction.TypeDeposit, "completed", started)
	s.logger.Info("deposit completed",
		"reference", entry.ReferenceNumber, "account_id", accountID, "amount", m.String())
	return entry, nil
}

// Withdraw debits an account and records a completed ledger entry. The
// funds check runs under the row lock, so a concurrent withdrawal cannot
// spend the same balance twice.
func (s *Service) Withdraw(
	ctx context.Context,
	actor *user.User,
	accountID uint,
	amount float64,
	currencyCode, description string,
	idemKey *string,
) (*transaction.Transaction, error) {
	started := time.Now()
	if !actor.HasPermission(user.PermTransactionCreate) {
		return nil, user.ErrPermissionDenied
	}
	m, err := parseAmount(amount, currencyCode)
	if err != nil {
		return nil, err
	}
	if prior, err := s.replay(ctx, idemKey); err != nil {
		return nil, err
	} else if prior != nil {
		return prior, nil
	}

	entry, err := s.run(ctx, idemKey, func(uow repository.UnitOfWork) (*transaction.Transaction, error) {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return nil, err
		}
		ledger, err := uow.TransactionRepository()
		if err != nil {
			return nil, err
		}
		a, err := lockAccount(ctx, accounts, actor, accountID, true)
		if err != nil {
			return nil, err
		}
		if err := a.Debit(m); err != nil {
			return nil, err
		}
		if err := accounts.UpdateBalance(ctx, a.ID, a.Balance.Amount()); err != nil {
			return nil, err
		}
		entry, err := transaction.New(transaction.TypeWithdraw, m, a.ID, transaction.StatusCompleted, description)
		if err != nil {
			return nil, err
		}
		entry.IdempotencyKey = idemKey
		if err := ledger.Create(ctx, entry); err != nil {
			return nil, err
		}
		return entry, nil
	})
	if err != nil {
		s.record(transaction.TypeWithdraw, "failed", started)
		return nil, err
	}
	s.record(transaction.TypeWithdraw, "completed", started)
	s.logger.Info("withdrawal completed",
		"reference", entry.ReferenceNumber, "account_id", accountID, "amount", m.String())
	return entry, nil
}

// Transfer moves funds between two accounts. Amounts at or below the
// high-value threshold settle immediately; larger amounts are recorded
// pending_approval and touch no balance until approved. Locks are taken in
// ascending account-id order so two opposing transfers cannot deadlock.
func (s *Service) Transfer(
	ctx context.Context,
	actor *user.User,
	fromID, toID uint,
	amount float64,
	currencyCode, description string,
	idemKey *string,
) (*transaction.Transaction, error) {
	started := time.Now()
	if !actor.HasPermission(user.PermTransactionCreate) {
		return nil, user.ErrPermissionDenied
	}
	if fromID == toID {
		return nil, account.ErrSameAccount
	}
	m, err := parseAmount(amount, currencyCode)
	if err != nil {
		return nil, err
	}
	needsApproval, err := transaction.RequiresApproval(m)
	if err != nil {
		return nil, err
	}
	if prior, err := s.replay(ctx, idemKey); err != nil {
		return nil, err
	} else if prior != nil {
		return prior, nil
	}

	entry, err := s.run(ctx, idemKey, func(uow repository.UnitOfWork) (*transaction.Transaction, error) {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return nil, err
		}
		ledger, err := uow.TransactionRepository()
		if err != nil {
			return nil, err
		}
		src, dst, err := lockPair(ctx, accounts, actor, fromID, toID)
		if err != nil {
			return nil, err
		}
		if err := src.ValidateDebit(m); err != nil {
			return nil, err
		}

		status := transaction.StatusCompleted
		if needsApproval {
			status = transaction.StatusPendingApproval
		} else {
			if err := src.Debit(m); err != nil {
				return nil, err
			}
			if err := dst.Credit(m); err != nil {
				return nil, err
			}
			if err := accounts.UpdateBalance(ctx, src.ID, src.Balance.Amount()); err != nil {
				return nil, err
			}
			if err := accounts.UpdateBalance(ctx, dst.ID, dst.Balance.Amount()); err != nil {
				return nil, err
			}
		}

		entry, err := transaction.New(transaction.TypeTransfer, m, fromID, status, description)
		if err != nil {
			return nil, err
		}
		recipient := toID
		entry.RecipientAccountID = &recipient
		entry.IdempotencyKey = idemKey
		if err := ledger.Create(ctx, entry); err != nil {
			return nil, err
		}
		return entry, nil
	})
	if err != nil {
		s.record(transaction.TypeTransfer, "failed", started)
		return nil, err
	}
	s.record(transaction.TypeTransfer, string(entry.Status), started)
	s.logger.Info("transfer recorded",
		"reference", entry.ReferenceNumber, "from", fromID, "to", toID,
		"amount", m.String(), "status", entry.Status)
	return entry, nil
}

// lockPair locks both transfer accounts in ascending id order. Ownership is
// required on the source only; the recipient just has to exist and be
// active.
func lockPair(
	ctx context.Context,
	accounts repository.AccountRepository,
	actor *user.User,
	fromID, toID uint,
) (src, dst *account.Account, err error) {
	lock := func(id uint) (*account.Account, error) {
		return lockAccount(ctx, accounts, actor, id, id == fromID)
	}
	first, second := fromID, toID
	if toID < fromID {
		first, second = toID, fromID
	}
	a, err := lock(first)
	if err != nil {
		return nil, nil, err
	}
	b, err := lock(second)
	if err != nil {
		return nil, nil, err
	}
	if a.ID == fromID {
		return a, b, nil
	}
	return b, a, nil
}
