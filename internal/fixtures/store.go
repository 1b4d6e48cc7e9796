// Package fixtures provides an in-memory unit of work and repositories for
// service tests. Units of work are serialized by a store-wide mutex and
// rolled back by snapshot, mirroring the commit-or-nothing behavior of the
// real storage layer.
package fixtures

import (
	"context"
	"sync"
	"time"

	"github.com/revobank/revobank/pkg/domain/account"
	"github.com/revobank/revobank/pkg/domain/transaction"
	"github.com/revobank/revobank/pkg/domain/user"
	"github.com/revobank/revobank/pkg/money"
	"github.com/revobank/revobank/pkg/repository"
	"github.com/revobank/revobank/pkg/utils"
)

// Store holds all fixture state. Values are stored by copy so callers can
// never mutate the store through a returned aggregate.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	accounts     map[uint]account.Account
	transactions map[uint]transaction.Transaction
	users        map[uint]user.User

	nextAccountID     uint
	nextTransactionID uint
	nextUserID        uint
}

// NewStore creates an empty fixture store.
func NewStore() *Store {
	return &Store{
		accounts:     make(map[uint]account.Account),
		transactions: make(map[uint]transaction.Transaction),
		users:        make(map[uint]user.User),
	}
}

// AddUser seeds a user with the given role. The password is "password".
func (s *Store) AddUser(username string, role user.Role) *user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	hashed, err := utils.HashPassword("password")
	if err != nil {
		panic(err)
	}
	s.nextUserID++
	u := user.User{
		ID:             s.nextUserID,
		Username:       username,
		Email:          username + "@example.com",
		Name:           username,
		HashedPassword: hashed,
		Role:           role,
		CreatedAt:      time.Now().UTC(),
	}
	s.users[u.ID] = u
	out := u
	return &out
}

// AddAccount seeds an active account with the given balance in smallest
// currency units of the default currency.
func (s *Store) AddAccount(userID uint, t account.Type, balance int64) *account.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	bal, err := money.FromSmallestUnit(balance, "")
	if err != nil {
		panic(err)
	}
	number, err := account.NewNumber(t)
	if err != nil {
		panic(err)
	}
	s.nextAccountID++
	a := account.Account{
		ID:        s.nextAccountID,
		Number:    number,
		Type:      t,
		Balance:   bal,
		Status:    account.StatusActive,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	s.accounts[a.ID] = a
	out := a
	return &out
}

// Account returns a copy of the stored account for assertions.
func (s *Store) Account(id uint) (account.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	return a, ok
}

// Transaction returns a copy of the stored ledger entry for assertions.
func (s *Store) Transaction(id uint) (transaction.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	return tx, ok
}

type snapshot struct {
	accounts          map[uint]account.Account
	transactions      map[uint]transaction.Transaction
	users             map[uint]user.User
	nextAccountID     uint
	nextTransactionID uint
	nextUserID        uint
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		accounts:          make(map[uint]account.Account, len(s.accounts)),
		transactions:      make(map[uint]transaction.Transaction, len(s.transactions)),
		users:             make(map[uint]user.User, len(s.users)),
		nextAccountID:     s.nextAccountID,
		nextTransactionID: s.nextTransactionID,
		nextUserID:        s.nextUserID,
	}
	for id, a := range s.accounts {
		snap.accounts[id] = a
	}
	for id, tx := range s.transactions {
		snap.transactions[id] = tx
	}
	for id, u := range s.users {
		snap.users[id] = u
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = snap.accounts
	s.transactions = snap.transactions
	s.users = snap.users
	s.nextAccountID = snap.nextAccountID
	s.nextTransactionID = snap.nextTransactionID
	s.nextUserID = snap.nextUserID
}

// UoW is the in-memory unit of work over a Store.
type UoW struct {
	store *Store
}

// NewUoW creates a unit of work over the store.
func NewUoW(store *Store) *UoW {
	return &UoW{store: store}
}

// Do serializes units of work and restores the previous state when fn
// fails, so partial mutations never survive.
func (u *UoW) Do(_ context.Context, fn func(uow repository.UnitOfWork) error) error {
	u.store.txMu.Lock()
	defer u.store.txMu.Unlock()
	snap := u.store.snapshot()
	if err := fn(u); err != nil {
		u.store.restore(snap)
		return err
	}
	return nil
}

// AccountRepository returns the in-memory account repository.
func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	return &accountRepository{store: u.store}, nil
}

// TransactionRepository returns the in-memory ledger repository.
func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	return &transactionRepository{store: u.store}, nil
}

// UserRepository returns the in-memory user repository.
func (u *UoW) UserRepository() (repository.UserRepository, error) {
	return &userRepository{store: u.store}, nil
}
