// Package repository defines the data-access contracts the service layer
// depends on. Implementations live under infra.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/revobank/revobank/pkg/domain/account"
	"github.com/revobank/revobank/pkg/domain/transaction"
	"github.com/revobank/revobank/pkg/domain/user"
	"github.com/revobank/revobank/pkg/dto"
)

var (
	// ErrUniqueViolation is returned when an insert collides with a unique
	// constraint (account number, reference number, idempotency key,
	// username, email).
	ErrUniqueViolation = errors.New("unique constraint violation")
	// ErrLockNotAvailable is returned when a row lock cannot be acquired
	// without waiting. Callers retry with backoff.
	ErrLockNotAvailable = errors.New("row lock not available")
)

// AccountRepository is the data-access contract for accounts.
type AccountRepository interface {
	Create(ctx context.Context, a *account.Account) error
	Get(ctx context.Context, id uint) (*account.Account, error)
	// GetForUpdate loads the account under an exclusive row lock. It must
	// be called inside a unit of work; every balance mutation re-reads and
	// re-validates through it.
	GetForUpdate(ctx context.Context, id uint) (*account.Account, error)
	ListByUser(ctx context.Context, userID uint, filter dto.AccountFilter) ([]*account.Account, error)
	IDsByUser(ctx context.Context, userID uint) ([]uint, error)
	UpdateBalance(ctx context.Context, id uint, balance int64) error
	UpdateStatus(ctx context.Context, id uint, status account.Status) error
	Delete(ctx context.Context, id uint) error
}

// TransactionRepository is the data-access contract for ledger entries.
// Entries are insert-only apart from status advancement.
type TransactionRepository interface {
	Create(ctx context.Context, tx *transaction.Transaction) error
	Get(ctx context.Context, id uint) (*transaction.Transaction, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*transaction.Transaction, error)
	// List returns entries where one of accountIDs is source or recipient,
	// newest first with ties broken by id descending.
	List(ctx context.Context, accountIDs []uint, filter dto.TransactionFilter, page, limit int) (*dto.Page[*transaction.Transaction], error)
	UpdateStatus(ctx context.Context, id uint, status transaction.Status) error
}

// UserRepository is the data-access contract for users.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	Get(ctx context.Context, id uint) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Update(ctx context.Context, u *user.User) error
}

// RevocationStore records invalidated credentials. Backed by shared durable
// storage so revocation survives restarts and spans worker processes.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// UnitOfWork provides a transaction boundary and repository access bound to
// it. All repositories obtained from one UnitOfWork share a session, so a
// balance mutation and its ledger insert commit or roll back together.
type UnitOfWork interface {
	// Do executes fn inside a storage transaction. If fn returns an error
	// the transaction is rolled back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	AccountRepository() (AccountRepository, error)
	TransactionRepository() (TransactionRepository, error)
	UserRepository() (UserRepository, error)
}
