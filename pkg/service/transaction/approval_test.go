package transaction_test

import (
	"context"
	"testing"

	accountdomain "github.com/revobank/revobank/pkg/domain/account"
	txdomain "github.com/revobank/revobank/pkg/domain/transaction"
	"github.com/revobank/revobank/pkg/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprove_SettlesPendingTransfer(t *testing.T) {
	store, svc := newEngine(t)
	alice := store.AddUser("alice", user.RoleCustomer)
	bob := store.AddUser("bob", user.RoleCustomer)
	teller := store.AddUser("tina", user.RoleTeller)
	from := store.AddAccount(alice.ID, accountdomain.TypeBusiness, 60_000_000*mainUnit)
	to := store.AddAccount(bob.ID, accountdomain.TypeBusiness, 2_000_000*mainUnit)

	pending, err := svc.Transfer(context.Background(), alice, from.ID, to.ID, 55_000_000, "IDR", "acquisition", nil)
	require.NoError(t, err)
	require.Equal(t, txdomain.StatusPendingApproval, pending.Status)

	approved, err := svc.Approve(context.Background(), teller, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, txdomain.StatusCompleted, approved.Status)

	src, _ := store.Account(from.ID)
	dst, _ := store.Account(to.ID)
	assert.InDelta(t, 5_000_000, src.Balance.Float(), 0)
	assert.InDelta(t, 57_000_000, dst.Balance.Float(), 0)
}

func TestApprove_WithoutPermission(t *testing.T) {
	store, svc := newEngine(t)
	alice := store.AddUser("alice", user.RoleCustomer)
	bob := store.AddUser("bob", user.RoleCustomer)
	from := store.AddAccount(alice.ID, accountdomain.TypeBusiness, 60_000_000*mainUnit)
	to := store.AddAccount(bob.ID, accountdomain.TypeBusiness, 2_000_000*mainUnit)

	pending, err := svc.Transfer(context.Background(), alice, from.ID, to.ID, 55_000_000, "IDR", "", nil)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), alice, pending.ID)
	require.ErrorIs(t, err, user.ErrPermissionDenied)

	entry, ok := store.Transaction(pending.ID)
	require.True(t, ok)
	assert.Equal(t, txdomain.StatusPendingApproval, entry.Status)
}

func TestApprove_Twice(t *testing.T) {
	store, svc := newEngine(t)
	alice := store.AddUser("alice", user.RoleCustomer)
	bob := store.AddUser("bob", user.RoleCustomer)
	teller := store.AddUser("tina", user.RoleTeller)
	from := store.AddAccount(alice.ID, accountdomain.TypeBusiness, 120_000_000*mainUnit)
	to := store.AddAccount(bob.ID, accountdomain.TypeBusiness, 2_000_000*mainUnit)

	pending, err := svc.Transfer(context.Background(), alice, from.ID, to.ID, 55_000_000, "IDR", "", nil)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), teller, pending.ID)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), teller, pending.ID)
	require.ErrorIs(t, err, txdomain.ErrNotPendingApproval)

	// The second attempt must not double-apply the debit.
	src, _ := store.Account(from.ID)
	assert.InDelta(t, 65_000_000, src.Balance.Float(), 0)
}

func TestApprove_NotFound(t *testing.T) {
	store, svc := newEngine(t)
	teller := store.AddUser("tina", user.RoleTeller)

	_, err := svc.Approve(context.Background(), teller, 42)
	require.ErrorIs(t, err, txdomain.ErrTransactionNotFound)
}

func TestApprove_CompletedTransaction(t *testing.T) {
	store, svc := newEngine(t)
	alice := store.AddUser("alice", user.RoleCustomer)
	teller := store.AddUser("tina", user.RoleTeller)
	a := store.AddAccount(alice.ID, accountdomain.TypeSavings, 1_000_000*mainUnit)

	entry, err := svc.Deposit(context.Background(), alice, a.ID, 5_000, "IDR", "", nil)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), teller, entry.ID)
	require.ErrorIs(t, err, txdomain.ErrNotPendingApproval)
}

func TestApprove_FundsDrainedSinceSubmission(t *testing.T) {
	store, svc := newEngine(t)
	alice := store.AddUser("alice", user.RoleCustomer)
	bob := store.AddUser("bob", user.RoleCustomer)
	teller := store.AddUser("tina", user.RoleTeller)
	from := store.AddAccount(alice.ID, accountdomain.TypeBusiness, 60_000_000*mainUnit)
	to := store.AddAccount(bob.ID, accountdomain.TypeBusiness, 2_000_000*mainUnit)

	pending, err := svc.Transfer(context.Background(), alice, from.ID, to.ID, 55_000_000, "IDR", "", nil)
	require.NoError(t, err)

	// The pending transfer held no funds, so the owner can still spend them.
	_, err = svc.Withdraw(context.Background(), alice, from.ID, 10_000_000, "IDR", "", nil)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), teller, pending.ID)
	require.ErrorIs(t, err, accountdomain.ErrInsufficientFunds)

	// Nothing moved and the transfer is still approvable later.
	entry, ok := store.Transaction(pending.ID)
	require.True(t, ok)
	assert.Equal(t, txdomain.StatusPendingApproval, entry.Status)
	src, _ := store.Account(from.ID)
	dst, _ := store.Account(to.ID)
	assert.InDelta(t, 50_000_000, src.Balance.Float(), 0)
	assert.InDelta(t, 2_000_000, dst.Balance.Float(), 0)
}

func TestApprove_FrozenSourceSinceSubmission(t *testing.T) {
	store, svc := newEngine(t)
	alice := store.AddUser("alice", user.RoleCustomer)
	bob := store.AddUser("bob", user.RoleCustomer)
	teller := store.AddUser("tina", user.RoleTeller)
	from := store.AddAccount(alice.ID, accountdomain.TypeBusiness, 60_000_000*mainUnit)
	to := store.AddAccount(bob.ID, accountdomain.TypeBusiness, 2_000_000*mainUnit)

	pending, err := svc.Transfer(context.Background(), alice, from.ID, to.ID, 55_000_000, "IDR", "", nil)
	require.NoError(t, err)
	freeze(t, store, from.ID)

	_, err = svc.Approve(context.Background(), teller, pending.ID)
	require.ErrorIs(t, err, accountdomain.ErrAccountNotActive)

	entry, ok := store.Transaction(pending.ID)
	require.True(t, ok)
	assert.Equal(t, txdomain.StatusPendingApproval, entry.Status)
}
