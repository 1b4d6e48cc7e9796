package transaction_test

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/revobank/revobank/internal/fixtures"
	"github.com/revobank/revobank/pkg/config"
	accountdomain "github.com/revobank/revobank/pkg/domain/account"
	txdomain "github.com/revobank/revobank/pkg/domain/transaction"
	"github.com/revobank/revobank/pkg/domain/user"
	"github.com/revobank/revobank/pkg/dto"
	"github.com/revobank/revobank/pkg/metrics"
	"github.com/revobank/revobank/pkg/repository"
	txsvc "github.com/revobank/revobank/pkg/service/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Balances are seeded in smallest currency units (IDR has two decimals).
const mainUnit = 100

func newEngine(t *testing.T) (*fixtures.Store, *txsvc.Service) {
	t.Helper()
	store := fixtures.NewStore()
	cfg := config.Engine{LockRetries: 3, LockBackoff: time.Millisecond}
	svc := txsvc.New(fixtures.NewUoW(store), cfg, metrics.NewCollector(), slog.Default())
	return store, svc
}

func freeze(t *testing.T, store *fixtures.Store, accountID uint) {
	t.Helper()
	repo, err := fixtures.NewUoW(store).AccountRepository()
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(context.Background(), accountID, accountdomain.StatusFrozen))
}

func TestDeposit_Success(t *testing.T) {
	store, svc := newEngine(t)
	owner := store.AddUser("alice", user.RoleCustomer)
	a := store.AddAccount(owner.ID, accountdomain.TypeSavings, 100_000*mainUnit)

	entry, err := svc.Deposit(context.Background(), owner, a.ID, 25_000, "IDR", "salary", nil)
	require.NoError(t, err)
	assert.Equal(t, txdomain.TypeDeposit, entry.Type)
	assert.Equal(t, txdomain.StatusCompleted, entry.Status)
	assert.True(t, strings.HasPrefix(entry.ReferenceNumber, "TRX"))
	assert.Len(t, entry.ReferenceNumber, 19)

	got, ok := store.Account(a.ID)
	require.True(t, ok)
	assert.InDelta(t, 125_000, got.Balance.Float(), 0)
}

func TestDeposit_InvalidAmount(t *testing.T) {
	store, svc := newEngine(t)
	owner := store.AddUser("alice", user.RoleCustomer)
	a := store.AddAccount(owner.ID, accountdomain.TypeSavings, 100_000*mainUnit)

	_, err := svc.Deposit(context.Background(), owner, a.ID, 0, "IDR", "", nil)
	require.ErrorIs(t, err, txdomain.ErrInvalidAmount)

	_, err = svc.Deposit(context.Background(), owner, a.ID, -50, "IDR", "", nil)
	require.ErrorIs(t, err, txdomain.ErrInvalidAmount)
}

func TestDeposit_FrozenAccount(t *testing.T) {
	store, svc := newEngine(t)
	owner := store.AddUser("alice", user.RoleCustomer)
	a := store.AddAccount(owner.ID, accountdomain.TypeSavings, 100_000*mainUnit)
	freeze(t, store, a.ID)

	_, err := svc.Deposit(context.Background(), owner, a.ID, 1_000, "IDR", "", nil)
	require.ErrorIs(t, err, accountdomain.ErrAccountNotActive)
}

func TestDeposit_StrangerAccountHidden(t *testing.T) {
	store, svc := newEngine(t)
	owner := store.AddUser("alice", user.RoleCustomer)
	stranger := store.AddUser("bob", user.RoleCustomer)
	teller := store.AddUser("tina", user.RoleTeller)
	a := store.AddAccount(owner.ID, accountdomain.TypeSavings, 100_000*mainUnit)

	_, err := svc.Deposit(context.Background(), stranger, a.ID, 1_000, "IDR", "", nil)
	require.ErrorIs(t, err, accountdomain.ErrAccountNotFound)

	_, err = svc.Deposit(context.Background(), teller, a.ID, 1_000, "IDR", "", nil)
	require.NoError(t, err)
}

func TestDeposit_AdminCannotCreate(t *testing.T) {
	store, svc := newEngine(t)
	admin := store.AddUser("root", user.RoleAdmin)
	a := store.AddAccount(admin.ID, accountdomain.TypeSavings, 100_000*mainUnit)

	_, err := svc.Deposit(context.Background(), admin, a.ID, 1_000, "IDR", "", nil)
	require.ErrorIs(t, err, user.ErrPermissionDenied)
}

func TestDeposit_IdempotentReplay(t *testing.T) {
	store, svc := newEngine(t)
	owner := store.AddUser("alice", user.RoleCustomer)
	a := store.AddAccount(owner.ID, accountdomain.TypeSavings, 100_000*mainUnit)
	key := "dep-2026-001"

	first, err := svc.Deposit(context.Background(), owner, a.ID, 5_000, "IDR", "topup", &key)
	require.NoError(t, err)
	second, err := svc.Deposit(context.Background(), owner, a.ID, 5_000, "IDR", "topup", &key)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ReferenceNumber, second.ReferenceNumber)

	got, ok := store.Account(a.ID)
	require.True(t, ok)
	assert.InDelta(t, 105_000, got.Balance.Float(), 0)
}

func TestWithdraw_Success(t *testing.T) {
	store, svc := newEngine(t)
	owner := store.AddUser("alice", user.RoleCustomer)
	a := store.AddAccount(owner.ID, accountdomain.TypeSavings, 150_000*mainUnit)

	entry, err := svc.Withdraw(context.Background(), owner, a.ID, 50_000, "IDR", "rent", nil)
	require.NoError(t, err)
	assert.Equal(t, txdomain.TypeWithdraw, entry.Type)
	assert.Equal(t, txdomain.StatusCompleted, entry.Status)

	got, ok := store.Account(a.ID)
	require.True(t, ok)
	assert.InDelta(t, 100_000, got.Balance.Float(), 0)
}

func TestWithdraw_DownToMinimum(t *testing.T) {
	store, svc := newEngine(t)
	owner := store.AddUser("alice", user.RoleCustomer)
	a := store.AddAccount(owner.ID, accountdomain.TypeSavings, 150_000*mainUnit)

	_, err := svc.Withdraw(context.Background(), owner, a.ID, 50_000, "IDR", "", nil)
	require.NoError(t, err)

	// The balance sits exactly at the savings minimum now.
	_, err = svc.Withdraw(context.Background(), owner, a.ID, 0.01, "IDR", "", nil)
	require.ErrorIs(t, err, accountdomain.ErrInsufficientFunds)

	got, ok := store.Account(a.ID)
	require.True(t, ok)
	assert.InDelta(t, 100_000, got.Balance.Float(), 0)
}

func TestWithdraw_InsufficientFundsLeavesNoTrace(t *testing.T) {
	store, svc := newEngine(t)
	owner := store.AddUser("alice", user.RoleCustomer)
	a := store.AddAccount(owner.ID, accountdomain.TypeSavings, 120_000*mainUnit)

	_, err := svc.Withdraw(context.Background(), owner, a.ID, 100_000, "IDR", "", nil)
	require.ErrorIs(t, err, accountdomain.ErrInsufficientFunds)

	got, ok := store.Account(a.ID)
	require.True(t, ok)
	assert.InDelta(t, 120_000, got.Balance.Float(), 0)

	page, err := svc.List(context.Background(), owner, listFilter(a.ID), 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.TotalItems)
}

func TestWithdraw_ConcurrentSpendersCannotOverdraw(t *testing.T) {
	store, svc := newEngine(t)
	owner := store.AddUser("alice", user.RoleCustomer)
	// Student minimum is 10_000: three 30_000 withdrawals fit, a fourth
	// would breach the minimum.
	a := store.AddAccount(owner.ID, accountdomain.TypeStudent, 100_000*mainUnit)

	const spenders = 5
	errs := make(chan error, spenders)
	var wg sync.WaitGroup
	for i := 0; i < spenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Withdraw(context.Background(), owner, a.ID, 30_000, "IDR", "", nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded, failed := 0, 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, accountdomain.ErrInsufficientFunds)
			failed++
		}
	}
	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 2, failed)

	got, ok := store.Account(a.ID)
	require.True(t, ok)
	assert.InDelta(t, 10_000, got.Balance.Float(), 0)
}

// contendedUoW fails every unit of work with a lock-contention error and
// counts the attempts.
type contendedUoW struct {
	attempts int
}

func (u *contendedUoW) Do(_ context.Context, _ func(repository.UnitOfWork) error) error {
	u.attempts++
	return repository.ErrLockNotAvailable
}

func (u *contendedUoW) AccountRepository() (repository.AccountRepository, error) {
	return nil, nil
}

func (u *contendedUoW) TransactionRepository() (repository.TransactionRepository, error) {
	return nil, nil
}

func (u *contendedUoW) UserRepository() (repository.UserRepository, error) {
	return nil, nil
}

func TestWithdraw_LockContentionSurfacesAfterBoundedRetries(t *testing.T) {
	uow := &contendedUoW{}
	cfg := config.Engine{LockRetries: 3, LockBackoff: time.Millisecond}
	svc := txsvc.New(uow, cfg, metrics.NewCollector(), slog.Default())
	owner := &user.User{ID: 1, Role: user.RoleCustomer}

	_, err := svc.Withdraw(context.Background(), owner, 1, 30_000, "IDR", "", nil)
	require.ErrorIs(t, err, repository.ErrLockNotAvailable)
	// Initial attempt plus LockRetries retries, then the conflict surfaces.
	assert.Equal(t, 1+cfg.LockRetries, uow.attempts)
}

func TestWithdraw_LockContentionStopsOnCancelledContext(t *testing.T) {
	uow := &contendedUoW{}
	cfg := config.Engine{LockRetries: 3, LockBackoff: time.Hour}
	svc := txsvc.New(uow, cfg, metrics.NewCollector(), slog.Default())
	owner := &user.User{ID: 1, Role: user.RoleCustomer}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Withdraw(ctx, owner, 1, 30_000, "IDR", "", nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, uow.attempts)
}

func TestTransfer_Completed(t *testing.T) {
	store, svc := newEngine(t)
	alice := store.AddUser("alice", user.RoleCustomer)
	bob := store.AddUser("bob", user.RoleCustomer)
	from := store.AddAccount(alice.ID, accountdomain.TypeChecking, 1_000_000*mainUnit)
	to := store.AddAccount(bob.ID, accountdomain.TypeSavings, 200_000*mainUnit)

	entry, err := svc.Transfer(context.Background(), alice, from.ID, to.ID, 300_000, "IDR", "invoice", nil)
	require.NoError(t, err)
	assert.Equal(t, txdomain.TypeTransfer, entry.Type)
	assert.Equal(t, txdomain.StatusCompleted, entry.Status)
	require.NotNil(t, entry.RecipientAccountID)
	assert.Equal(t, to.ID, *entry.RecipientAccountID)

	src, _ := store.Account(from.ID)
	dst, _ := store.Account(to.ID)
	assert.InDelta(t, 700_000, src.Balance.Float(), 0)
	assert.InDelta(t, 500_000, dst.Balance.Float(), 0)
}

func TestTransfer_ConservesTotal(t *testing.T) {
	store, svc := newEngine(t)
	alice := store.AddUser("alice", user.RoleCustomer)
	from := store.AddAccount(alice.ID, accountdomain.TypeChecking, 2_000_000*mainUnit)
	to := store.AddAccount(alice.ID, accountdomain.TypeSavings, 500_000*mainUnit)
	before := balanceSum(store, from.ID, to.ID)

	_, err := svc.Transfer(context.Background(), alice, from.ID, to.ID, 750_000, "IDR", "", nil)
	require.NoError(t, err)
	assert.Equal(t, before, balanceSum(store, from.ID, to.ID))
}

func TestTransfer_SameAccount(t *testing.T) {
	store, svc := newEngine(t)
	alice := store.AddUser("alice", user.RoleCustomer)
	a := store.AddAccount(alice.ID, accountdomain.TypeChecking, 1_000_000*mainUnit)

	_, err := svc.Transfer(context.Background(), alice, a.ID, a.ID, 10_000, "IDR", "", nil)
	require.ErrorIs(t, err, accountdomain.ErrSameAccount)
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	store, svc := newEngine(t)
	alice := store.AddUser("alice", user.RoleCustomer)
	bob := store.AddUser("bob", user.RoleCustomer)
	from := store.AddAccount(alice.ID, accountdomain.TypeChecking, 600_000*mainUnit)
	to := store.AddAccount(bob.ID, accountdomain.TypeSavings, 200_000*mainUnit)

	_, err := svc.Transfer(context.Background(), alice, from.ID, to.ID, 150_000, "IDR", "", nil)
	require.ErrorIs(t, err, accountdomain.ErrInsufficientFunds)

	src, _ := store.Account(from.ID)
	dst, _ := store.Account(to.ID)
	assert.InDelta(t, 600_000, src.Balance.Float(), 0)
	assert.InDelta(t, 200_000, dst.Balance.Float(), 0)
}

func TestTransfer_FrozenRecipient(t *testing.T) {
	store, svc := newEngine(t)
	alice := store.AddUser("alice", user.RoleCustomer)
	bob := store.AddUser("bob", user.RoleCustomer)
	from := store.AddAccount(alice.ID, accountdomain.TypeChecking, 1_000_000*mainUnit)
	to := store.AddAccount(bob.ID, accountdomain.TypeSavings, 200_000*mainUnit)
	freeze(t, store, to.ID)

	_, err := svc.Transfer(context.Background(), alice, from.ID, to.ID, 10_000, "IDR", "", nil)
	require.ErrorIs(t, err, accountdomain.ErrAccountNotActive)
}

func TestTransfer_NotSourceOwner(t *testing.T) {
	store, svc := newEngine(t)
	alice := store.AddUser("alice", user.RoleCustomer)
	bob := store.AddUser("bob", user.RoleCustomer)
	from := store.AddAccount(alice.ID, accountdomain.TypeChecking, 1_000_000*mainUnit)
	to := store.AddAccount(bob.ID, accountdomain.TypeSavings, 200_000*mainUnit)

	_, err := svc.Transfer(context.Background(), bob, from.ID, to.ID, 10_000, "IDR", "", nil)
	require.ErrorIs(t, err, accountdomain.ErrAccountNotFound)
}

func TestTransfer_AtThresholdSettlesImmediately(t *testing.T) {
	store, svc := newEngine(t)
	alice := store.AddUser("alice", user.RoleCustomer)
	bob := store.AddUser("bob", user.RoleCustomer)
	from := store.AddAccount(alice.ID, accountdomain.TypeBusiness, 60_000_000*mainUnit)
	to := store.AddAccount(bob.ID, accountdomain.TypeBusiness, 2_000_000*mainUnit)

	entry, err := svc.Transfer(context.Background(), alice, from.ID, to.ID, txdomain.HighValueThreshold, "IDR", "", nil)
	require.NoError(t, err)
	assert.Equal(t, txdomain.StatusCompleted, entry.Status)
}

func TestTransfer_AboveThresholdPendsWithoutMovingFunds(t *testing.T) {
	store, svc := newEngine(t)
	alice := store.AddUser("alice", user.RoleCustomer)
	bob := store.AddUser("bob", user.RoleCustomer)
	from := store.AddAccount(alice.ID, accountdomain.TypeBusiness, 60_000_000*mainUnit)
	to := store.AddAccount(bob.ID, accountdomain.TypeBusiness, 2_000_000*mainUnit)

	entry, err := svc.Transfer(context.Background(), alice, from.ID, to.ID, txdomain.HighValueThreshold+1, "IDR", "", nil)
	require.NoError(t, err)
	assert.Equal(t, txdomain.StatusPendingApproval, entry.Status)

	src, _ := store.Account(from.ID)
	dst, _ := store.Account(to.ID)
	assert.InDelta(t, 60_000_000, src.Balance.Float(), 0)
	assert.InDelta(t, 2_000_000, dst.Balance.Float(), 0)
}

func TestTransfer_UnderfundedHighValueRejectedAtSubmission(t *testing.T) {
	store, svc := newEngine(t)
	alice := store.AddUser("alice", user.RoleCustomer)
	bob := store.AddUser("bob", user.RoleCustomer)
	from := store.AddAccount(alice.ID, accountdomain.TypeBusiness, 51_000_000*mainUnit)
	to := store.AddAccount(bob.ID, accountdomain.TypeBusiness, 2_000_000*mainUnit)

	// Above the approval threshold, but the source cannot cover it; the
	// submission fails instead of recording a pending entry.
	_, err := svc.Transfer(context.Background(), alice, from.ID, to.ID, 60_000_000, "IDR", "", nil)
	require.ErrorIs(t, err, accountdomain.ErrInsufficientFunds)

	src, _ := store.Account(from.ID)
	assert.InDelta(t, 51_000_000, src.Balance.Float(), 0)

	page, err := svc.List(context.Background(), alice, listFilter(from.ID), 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func balanceSum(store *fixtures.Store, ids ...uint) int64 {
	var sum int64
	for _, id := range ids {
		a, _ := store.Account(id)
		sum += a.Balance.Amount()
	}
	return sum
}

func listFilter(accountID uint) dto.TransactionFilter {
	return dto.TransactionFilter{AccountID: accountID}
}
