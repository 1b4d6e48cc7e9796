package transaction

import (
	"context"
	"time"

	"github.com/revobank/revobank/pkg/domain/transaction"
	"github.com/revobank/revobank/pkg/domain/user"
	"github.com/revobank/revobank/pkg/repository"
)

// Approve settles a pending high-value transfer. The approver re-validates
// the transfer under the same locking discipline as a direct transfer: both
// accounts must still be active and the source must hold sufficient funds
// now, not at submission time. On a re-validation failure nothing is
// mutated and the transaction stays pending_approval.
func (s *Service) Approve(ctx context.Context, actor *user.User, txID uint) (*transaction.Transaction, error) {
	started := time.Now()
	if !actor.HasPermission(user.PermTransactionApprove) {
		return nil, user.ErrPermissionDenied
	}

	entry, err := s.run(ctx, nil, func(uow repository.UnitOfWork) (*transaction.Transaction, error) {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return nil, err
		}
		ledger, err := uow.TransactionRepository()
		if err != nil {
			return nil, err
		}
		entry, err := ledger.Get(ctx, txID)
		if err != nil {
			return nil, err
		}
		if entry.Status != transaction.StatusPendingApproval {
			return nil, transaction.ErrNotPendingApproval
		}
		if entry.RecipientAccountID == nil {
			return nil, transaction.ErrInvalidTransition
		}

		src, dst, err := lockPair(ctx, accounts, actor, entry.AccountID, *entry.RecipientAccountID)
		if err != nil {
			return nil, err
		}
		if err := src.Debit(entry.Amount); err != nil {
			return nil, err
		}
		if err := dst.Credit(entry.Amount); err != nil {
			return nil, err
		}
		if err := accounts.UpdateBalance(ctx, src.ID, src.Balance.Amount()); err != nil {
			return nil, err
		}
		if err := accounts.UpdateBalance(ctx, dst.ID, dst.Balance.Amount()); err != nil {
			return nil, err
		}
		if err := entry.Advance(transaction.StatusCompleted); err != nil {
			return nil, err
		}
		if err := ledger.UpdateStatus(ctx, entry.ID, entry.Status); err != nil {
			return nil, err
		}
		return entry, nil
	})
	if err != nil {
		s.record(transaction.TypeTransfer, "approval_failed", started)
		return nil, err
	}
	s.record(transaction.TypeTransfer, "approved", started)
	s.logger.Info("transfer approved",
		"reference", entry.ReferenceNumber, "transaction_id", entry.ID, "approver_id", actor.ID)
	return entry, nil
}
