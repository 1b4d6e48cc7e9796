// Package transaction provides the transaction engine: deposits,
// withdrawals and transfers settled atomically under row locks, the
// high-value approval workflow, and ledger queries.
package transaction

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/revobank/revobank/pkg/config"
	"github.com/revobank/revobank/pkg/domain/account"
	"github.com/revobank/revobank/pkg/domain/transaction"
	"github.com/revobank/revobank/pkg/domain/user"
	"github.com/revobank/revobank/pkg/metrics"
	"github.com/revobank/revobank/pkg/repository"
)

// referenceRetries bounds how often an operation is replayed after a
// reference-number collision.
const referenceRetries = 3

// Service implements the transaction engine over a unit of work.
type Service struct {
	uow     repository.UnitOfWork
	cfg     config.Engine
	metrics *metrics.Collector
	logger  *slog.Logger
}

// New creates a transaction engine.
func New(uow repository.UnitOfWork, cfg config.Engine, collector *metrics.Collector, logger *slog.Logger) *Service {
	return &Service{uow: uow, cfg: cfg, metrics: collector, logger: logger}
}

// replay returns the prior ledger entry recorded under the idempotency key,
// or nil when the key is unset or unused.
func (s *Service) replay(ctx context.Context, key *string) (*transaction.Transaction, error) {
	if key == nil || *key == "" {
		return nil, nil
	}
	repo, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	entry, err := repo.GetByIdempotencyKey(ctx, *key)
	if errors.Is(err, transaction.ErrTransactionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// run executes fn inside a unit of work, retrying bounded lock contention
// with backoff and reference-number collisions with a fresh attempt. A
// unique violation on the idempotency key means a concurrent duplicate won
// the race; the winner's entry is returned.
func (s *Service) run(
	ctx context.Context,
	idemKey *string,
	fn func(uow repository.UnitOfWork) (*transaction.Transaction, error),
) (*transaction.Transaction, error) {
	lockAttempts, refAttempts := 0, 0
	for {
		var entry *transaction.Transaction
		err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
			var err error
			entry, err = fn(uow)
			return err
		})
		switch {
		case err == nil:
			return entry, nil
		case errors.Is(err, repository.ErrLockNotAvailable) && lockAttempts < s.cfg.LockRetries:
			lockAttempts++
			s.metrics.RecordLockRetry()
			s.logger.Warn("row lock contended, retrying",
				"attempt", lockAttempts, "backoff", s.cfg.LockBackoff)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.cfg.LockBackoff):
			}
		case errors.Is(err, repository.ErrUniqueViolation):
			if prior, perr := s.replay(ctx, idemKey); perr == nil && prior != nil {
				return prior, nil
			}
			if refAttempts >= referenceRetries {
				return nil, err
			}
			refAttempts++
		default:
			return nil, err
		}
	}
}

// lockAccount loads the account under an exclusive row lock and checks it
// can take part in a money movement. When requireOwner is set, accounts the
// actor cannot see are reported as not found.
func lockAccount(
	ctx context.Context,
	repo repository.AccountRepository,
	actor *user.User,
	id uint,
	requireOwner bool,
) (*account.Account, error) {
	a, err := repo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if requireOwner && !actor.HasPermission(user.PermAccountViewAll) {
		if err := a.ValidateOwner(actor.ID); err != nil {
			return nil, account.ErrAccountNotFound
		}
	}
	if err := a.ValidateActive(); err != nil {
		return nil, err
	}
	return a, nil
}

// record counts an engine outcome.
func (s *Service) record(txType transaction.Type, outcome string, started time.Time) {
	s.metrics.RecordTransaction(string(txType), outcome, time.Since(started))
}
