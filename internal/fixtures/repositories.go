package fixtures

import (
	"context"
	"sort"
	"time"

	"github.com/revobank/revobank/pkg/domain/account"
	"github.com/revobank/revobank/pkg/domain/transaction"
	"github.com/revobank/revobank/pkg/domain/user"
	"github.com/revobank/revobank/pkg/dto"
	"github.com/revobank/revobank/pkg/money"
	"github.com/revobank/revobank/pkg/repository"
)

type accountRepository struct {
	store *Store
}

func (r *accountRepository) Create(_ context.Context, a *account.Account) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if existing.Number == a.Number {
			return repository.ErrUniqueViolation
		}
	}
	s.nextAccountID++
	a.ID = s.nextAccountID
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	s.accounts[a.ID] = *a
	return nil
}

func (r *accountRepository) Get(_ context.Context, id uint) (*account.Account, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	out := a
	return &out, nil
}

func (r *accountRepository) GetForUpdate(ctx context.Context, id uint) (*account.Account, error) {
	// Units of work are serialized by the store mutex, so a plain read has
	// the same isolation a row lock gives the real repository.
	return r.Get(ctx, id)
}

func (r *accountRepository) ListByUser(_ context.Context, userID uint, filter dto.AccountFilter) ([]*account.Account, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*account.Account
	for _, a := range s.accounts {
		if a.UserID != userID {
			continue
		}
		if filter.Type != "" && string(a.Type) != filter.Type {
			continue
		}
		if filter.Status != "" && string(a.Status) != filter.Status {
			continue
		}
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *accountRepository) IDsByUser(_ context.Context, userID uint) ([]uint, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uint
	for _, a := range s.accounts {
		if a.UserID == userID {
			ids = append(ids, a.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *accountRepository) UpdateBalance(_ context.Context, id uint, balance int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return account.ErrAccountNotFound
	}
	bal, err := money.FromSmallestUnit(balance, a.Balance.Currency())
	if err != nil {
		return err
	}
	a.Balance = bal
	a.UpdatedAt = time.Now().UTC()
	s.accounts[id] = a
	return nil
}

func (r *accountRepository) UpdateStatus(_ context.Context, id uint, status account.Status) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return account.ErrAccountNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	s.accounts[id] = a
	return nil
}

func (r *accountRepository) Delete(_ context.Context, id uint) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return account.ErrAccountNotFound
	}
	delete(s.accounts, id)
	return nil
}

type transactionRepository struct {
	store *Store
}

func (r *transactionRepository) Create(_ context.Context, tx *transaction.Transaction) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.transactions {
		if existing.ReferenceNumber == tx.ReferenceNumber {
			return repository.ErrUniqueViolation
		}
		if tx.IdempotencyKey != nil && existing.IdempotencyKey != nil &&
			*existing.IdempotencyKey == *tx.IdempotencyKey {
			return repository.ErrUniqueViolation
		}
	}
	s.nextTransactionID++
	tx.ID = s.nextTransactionID
	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now().UTC()
	}
	s.transactions[tx.ID] = *tx
	return nil
}

func (r *transactionRepository) Get(_ context.Context, id uint) (*transaction.Transaction, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok {
		return nil, transaction.ErrTransactionNotFound
	}
	out := tx
	return &out, nil
}

func (r *transactionRepository) GetByIdempotencyKey(_ context.Context, key string) (*transaction.Transaction, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.transactions {
		if tx.IdempotencyKey != nil && *tx.IdempotencyKey == key {
			out := tx
			return &out, nil
		}
	}
	return nil, transaction.ErrTransactionNotFound
}

func (r *transactionRepository) List(
	_ context.Context,
	accountIDs []uint,
	filter dto.TransactionFilter,
	page, limit int,
) (*dto.Page[*transaction.Transaction], error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	participant := func(tx transaction.Transaction, ids []uint) bool {
		for _, id := range ids {
			if tx.AccountID == id {
				return true
			}
			if tx.RecipientAccountID != nil && *tx.RecipientAccountID == id {
				return true
			}
		}
		return false
	}

	var matched []transaction.Transaction
	for _, tx := range s.transactions {
		if !participant(tx, accountIDs) {
			continue
		}
		if filter.AccountID != 0 && !participant(tx, []uint{filter.AccountID}) {
			continue
		}
		if filter.Type != "" && string(tx.Type) != filter.Type {
			continue
		}
		if filter.Status != "" && string(tx.Status) != filter.Status {
			continue
		}
		if filter.Start != nil && tx.Timestamp.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && tx.Timestamp.After(*filter.End) {
			continue
		}
		matched = append(matched, tx)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].Timestamp.After(matched[j].Timestamp)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	items := make([]*transaction.Transaction, 0, end-start)
	for i := start; i < end; i++ {
		tx := matched[i]
		items = append(items, &tx)
	}
	return dto.NewPage(items, page, limit, total), nil
}

func (r *transactionRepository) UpdateStatus(_ context.Context, id uint, status transaction.Status) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok {
		return transaction.ErrTransactionNotFound
	}
	tx.Status = status
	s.transactions[id] = tx
	return nil
}

type userRepository struct {
	store *Store
}

func (r *userRepository) Create(_ context.Context, u *user.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return repository.ErrUniqueViolation
		}
	}
	s.nextUserID++
	u.ID = s.nextUserID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = *u
	return nil
}

func (r *userRepository) Get(_ context.Context, id uint) (*user.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	out := u
	return &out, nil
}

func (r *userRepository) GetByUsername(_ context.Context, username string) (*user.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*user.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *userRepository) Update(_ context.Context, u *user.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	for id, existing := range s.users {
		if id == u.ID {
			continue
		}
		if existing.Username == u.Username || existing.Email == u.Email {
			return repository.ErrUniqueViolation
		}
	}
	u.UpdatedAt = time.Now().UTC()
	s.users[u.ID] = *u
	return nil
}
