// Package account provides the account registry service: opening accounts
// under the type policy table, owner-scoped reads, status administration
// and guarded deletion.
package account

import (
	"context"
	"errors"
	"log/slog"

	"github.com/revobank/revobank/pkg/currency"
	"github.com/revobank/revobank/pkg/domain/account"
	"github.com/revobank/revobank/pkg/domain/user"
	"github.com/revobank/revobank/pkg/dto"
	"github.com/revobank/revobank/pkg/money"
	"github.com/revobank/revobank/pkg/repository"
)

// numberRetries bounds how often account creation regenerates a number
// after a uniqueness collision before giving up.
const numberRetries = 5

// Service implements account registry operations over a unit of work.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates an account registry service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// Create opens an account of the given type for the actor, funded with the
// initial deposit. The deposit must meet the type's minimum balance.
func (s *Service) Create(
	ctx context.Context,
	actor *user.User,
	accountType string,
	initialDeposit float64,
	currencyCode string,
) (*account.Account, error) {
	if !actor.HasPermission(user.PermAccountCreate) {
		return nil, user.ErrPermissionDenied
	}
	t, err := account.ParseType(accountType)
	if err != nil {
		return nil, err
	}
	deposit, err := money.New(initialDeposit, currency.Code(currencyCode))
	if err != nil {
		return nil, err
	}

	var created *account.Account
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		// The generated number can collide with an existing row; regenerate
		// and retry a bounded number of times.
		for attempt := 0; attempt < numberRetries; attempt++ {
			a, err := account.New(actor.ID, t, deposit)
			if err != nil {
				return err
			}
			err = repo.Create(ctx, a)
			if err == nil {
				created = a
				return nil
			}
			if !errors.Is(err, repository.ErrUniqueViolation) {
				return err
			}
			s.logger.Warn("account number collision, regenerating",
				"user_id", actor.ID, "attempt", attempt+1)
		}
		return repository.ErrUniqueViolation
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("account created",
		"account_id", created.ID, "user_id", actor.ID, "type", created.Type)
	return created, nil
}

// Get returns the account if the actor owns it or may view all accounts.
// Accounts belonging to other users are reported as not found so account
// IDs are not enumerable.
func (s *Service) Get(ctx context.Context, actor *user.User, id uint) (*account.Account, error) {
	repo, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	a, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.HasPermission(user.PermAccountViewAll) {
		return a, nil
	}
	if err := a.ValidateOwner(actor.ID); err != nil {
		return nil, account.ErrAccountNotFound
	}
	return a, nil
}

// List returns the actor's accounts, narrowed by type and status. An empty
// status filter defaults to active; inactive and frozen accounts are only
// listed when asked for explicitly.
func (s *Service) List(ctx context.Context, actor *user.User, filter dto.AccountFilter) ([]*account.Account, error) {
	if filter.Type != "" {
		if _, err := account.ParseType(filter.Type); err != nil {
			return nil, err
		}
	}
	if filter.Status == "" {
		filter.Status = string(account.StatusActive)
	}
	if _, err := account.ParseStatus(filter.Status); err != nil {
		return nil, err
	}
	repo, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	return repo.ListByUser(ctx, actor.ID, filter)
}

// UpdateStatus sets the account's lifecycle status. Owners can manage their
// own accounts; account:update allows acting on any account.
func (s *Service) UpdateStatus(ctx context.Context, actor *user.User, id uint, status string) (*account.Account, error) {
	st, err := account.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	var updated *account.Account
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		a, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if !actor.HasPermission(user.PermAccountUpdate) {
			if err := a.ValidateOwner(actor.ID); err != nil {
				return account.ErrAccountNotFound
			}
		}
		if err := repo.UpdateStatus(ctx, id, st); err != nil {
			return err
		}
		a.Status = st
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("account status updated",
		"account_id", id, "status", st, "actor_id", actor.ID)
	return updated, nil
}

// Delete removes an account. The account must hold a zero balance; funds
// must be withdrawn or transferred out first.
func (s *Service) Delete(ctx context.Context, actor *user.User, id uint) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		// Lock the row so a concurrent deposit cannot slip in between the
		// zero-balance check and the delete.
		a, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !actor.HasPermission(user.PermAccountDelete) {
			if err := a.ValidateOwner(actor.ID); err != nil {
				return account.ErrAccountNotFound
			}
		}
		if !a.Balance.IsZero() {
			return account.ErrNonZeroBalance
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("account deleted", "account_id", id, "actor_id", actor.ID)
	return nil
}

// Types describes the account types available and their policies.
func (s *Service) Types() []dto.AccountTypeRead {
	types := make([]dto.AccountTypeRead, 0, len(account.Policies))
	for _, t := range []account.Type{
		account.TypeSavings,
		account.TypeChecking,
		account.TypeBusiness,
		account.TypeStudent,
	} {
		policy := account.Policies[t]
		types = append(types, dto.AccountTypeRead{
			Type:           string(t),
			MinimumBalance: policy.MinBalance,
			Description:    policy.Description,
		})
	}
	return types
}
