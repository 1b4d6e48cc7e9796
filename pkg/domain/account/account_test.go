package account_test

import (
	"strings"
	"testing"

	"github.com/revobank/revobank/pkg/domain/account"
	"github.com/revobank/revobank/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idr(t *testing.T, amount float64) money.Money {
	t.Helper()
	m, err := money.New(amount, "IDR")
	require.NoError(t, err)
	return m
}

func TestParseType(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"savings", "checking", "business", "student", " Savings "} {
		typ, err := account.ParseType(s)
		require.NoError(t, err, s)
		assert.NotEmpty(t, typ.Description())
	}
	_, err := account.ParseType("premium")
	assert.ErrorIs(t, err, account.ErrInvalidAccountType)
}

func TestNewNumber(t *testing.T) {
	t.Parallel()
	cases := map[account.Type]string{
		account.TypeSavings:  "38",
		account.TypeChecking: "39",
		account.TypeBusiness: "37",
		account.TypeStudent:  "36",
	}
	for typ, prefix := range cases {
		num, err := account.NewNumber(typ)
		require.NoError(t, err)
		assert.Len(t, num, account.NumberLength)
		assert.True(t, strings.HasPrefix(num, prefix), "number %s should start with %s", num, prefix)
		for _, r := range num {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
	_, err := account.NewNumber(account.Type("premium"))
	assert.ErrorIs(t, err, account.ErrInvalidAccountType)
}

func TestNew_EnforcesMinimumDeposit(t *testing.T) {
	t.Parallel()
	_, err := account.New(1, account.TypeSavings, idr(t, 99_999))
	assert.ErrorIs(t, err, account.ErrInsufficientInitialDeposit)

	a, err := account.New(1, account.TypeSavings, idr(t, 100_000))
	require.NoError(t, err)
	assert.Equal(t, account.StatusActive, a.Status)
	assert.Equal(t, uint(1), a.UserID)
	assert.True(t, a.Balance.Equals(idr(t, 100_000)))
}

func TestParseStatus(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"active", "inactive", "frozen"} {
		_, err := account.ParseStatus(s)
		assert.NoError(t, err)
	}
	_, err := account.ParseStatus("closed")
	assert.ErrorIs(t, err, account.ErrInvalidStatus)
}

func TestValidateOwnerAndActive(t *testing.T) {
	t.Parallel()
	a, err := account.New(7, account.TypeStudent, idr(t, 10_000))
	require.NoError(t, err)

	assert.NoError(t, a.ValidateOwner(7))
	assert.ErrorIs(t, a.ValidateOwner(8), account.ErrNotOwner)

	assert.NoError(t, a.ValidateActive())
	a.Status = account.StatusFrozen
	assert.ErrorIs(t, a.ValidateActive(), account.ErrAccountNotActive)
}

func TestDebit_RespectsMinimumBalance(t *testing.T) {
	t.Parallel()
	a, err := account.New(1, account.TypeStudent, idr(t, 100_000))
	require.NoError(t, err)

	// 100_000 - 30_000*3 = 10_000, exactly the student minimum.
	for i := 0; i < 3; i++ {
		require.NoError(t, a.Debit(idr(t, 30_000)))
	}
	assert.True(t, a.Balance.Equals(idr(t, 10_000)))

	err = a.Debit(idr(t, 30_000))
	assert.ErrorIs(t, err, account.ErrInsufficientFunds)
	assert.True(t, a.Balance.Equals(idr(t, 10_000)), "failed debit must not move the balance")
}

func TestCredit(t *testing.T) {
	t.Parallel()
	a, err := account.New(1, account.TypeSavings, idr(t, 100_000))
	require.NoError(t, err)
	require.NoError(t, a.Credit(idr(t, 50_000)))
	assert.True(t, a.Balance.Equals(idr(t, 150_000)))
}
