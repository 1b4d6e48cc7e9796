// Package account contains the account aggregate: the type policy table,
// account numbering scheme, status lifecycle and the business invariants
// that guard every balance movement.
package account

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/revobank/revobank/pkg/currency"
	"github.com/revobank/revobank/pkg/money"
)

var (
	// ErrAccountNotFound is returned when an account does not exist or is
	// not visible to the caller.
	ErrAccountNotFound = errors.New("account not found")
	// ErrNotOwner is returned when a user acts on an account they do not own.
	ErrNotOwner = errors.New("not account owner")
	// ErrInvalidAccountType is returned for an unrecognized account type.
	ErrInvalidAccountType = errors.New("invalid account type")
	// ErrInvalidStatus is returned for a status outside the allowed set.
	ErrInvalidStatus = errors.New("invalid account status")
	// ErrInsufficientInitialDeposit is returned when the opening deposit is
	// below the type's minimum balance.
	ErrInsufficientInitialDeposit = errors.New("initial deposit below minimum balance")
	// ErrAccountNotActive is returned when a direct operation touches an
	// inactive or frozen account.
	ErrAccountNotActive = errors.New("account is not active")
	// ErrNonZeroBalance is returned when deleting an account that still
	// holds funds.
	ErrNonZeroBalance = errors.New("account balance is not zero")
	// ErrInsufficientFunds is returned when a debit would push the balance
	// below the type's minimum.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrSameAccount is returned for a transfer from an account to itself.
	ErrSameAccount = errors.New("cannot transfer to same account")
)

// Type classifies an account and fixes its numbering prefix and
// minimum-balance policy.
type Type string

const (
	TypeSavings  Type = "savings"
	TypeChecking Type = "checking"
	TypeBusiness Type = "business"
	TypeStudent  Type = "student"
)

// Policy is the static per-type policy data. MinBalance is expressed in
// main currency units of the default currency.
type Policy struct {
	NumberPrefix string
	MinBalance   float64
	Description  string
}

// Policies maps each account type to its policy. This is configuration
// shipped with the code, not per-row state.
var Policies = map[Type]Policy{
	TypeSavings: {
		NumberPrefix: "38",
		MinBalance:   100_000,
		Description:  "Basic savings account with standard interest rate",
	},
	TypeChecking: {
		NumberPrefix: "39",
		MinBalance:   500_000,
		Description:  "Everyday checking account for regular transactions",
	},
	TypeBusiness: {
		NumberPrefix: "37",
		MinBalance:   1_000_000,
		Description:  "Business account with higher transaction limits",
	},
	TypeStudent: {
		NumberPrefix: "36",
		MinBalance:   10_000,
		Description:  "Student account with no monthly fees",
	},
}

// ParseType validates and normalizes an account type string.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := Policies[t]; !ok {
		return "", ErrInvalidAccountType
	}
	return t, nil
}

// MinimumBalance returns the type's minimum balance in the given currency.
func (t Type) MinimumBalance(code currency.Code) (money.Money, error) {
	policy, ok := Policies[t]
	if !ok {
		return money.Money{}, ErrInvalidAccountType
	}
	return money.New(policy.MinBalance, code)
}

// Description returns the display description for the type.
func (t Type) Description() string { return Policies[t].Description }

// Status is the lifecycle state of an account.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusFrozen   Status = "frozen"
)

// ParseStatus validates an account status string.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusActive, StatusInactive, StatusFrozen:
		return st, nil
	default:
		return "", ErrInvalidStatus
	}
}

// NumberLength is the fixed length of an account number: a two-digit type
// prefix followed by fourteen random digits.
const NumberLength = 16

// NewNumber generates a candidate account number for the type. Uniqueness is
// enforced by the store; callers retry on collision.
func NewNumber(t Type) (string, error) {
	policy, ok := Policies[t]
	if !ok {
		return "", ErrInvalidAccountType
	}
	var b strings.Builder
	b.WriteString(policy.NumberPrefix)
	for i := 0; i < NumberLength-len(policy.NumberPrefix); i++ {
		b.WriteByte(byte('0' + rand.Intn(10)))
	}
	return b.String(), nil
}

// Account is a user's bank account.
//
// Invariants:
//   - Balance never drops below the type minimum while the account is
//     active, except transiently while a transfer awaits approval.
//   - Only active accounts are debited or credited by direct operations.
//   - Ownership is immutable after creation.
type Account struct {
	ID        uint
	Number    string
	Type      Type
	Balance   money.Money
	Status    Status
	UserID    uint
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New builds an active account with a fresh number and the opening balance.
func New(userID uint, t Type, initialDeposit money.Money) (*Account, error) {
	if _, ok := Policies[t]; !ok {
		return nil, ErrInvalidAccountType
	}
	min, err := t.MinimumBalance(initialDeposit.Currency())
	if err != nil {
		return nil, err
	}
	if below, err := initialDeposit.LessThan(min); err != nil {
		return nil, err
	} else if below {
		return nil, ErrInsufficientInitialDeposit
	}
	number, err := NewNumber(t)
	if err != nil {
		return nil, err
	}
	return &Account{
		Number:    number,
		Type:      t,
		Balance:   initialDeposit,
		Status:    StatusActive,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// MinimumBalance returns the account's minimum balance in its own currency.
func (a *Account) MinimumBalance() (money.Money, error) {
	return a.Type.MinimumBalance(a.Balance.Currency())
}

// ValidateOwner checks that the user owns this account.
func (a *Account) ValidateOwner(userID uint) error {
	if a.UserID != userID {
		return ErrNotOwner
	}
	return nil
}

// ValidateActive checks that direct operations may move money on the account.
func (a *Account) ValidateActive() error {
	if a.Status != StatusActive {
		return ErrAccountNotActive
	}
	return nil
}

// ValidateDebit checks that removing amount keeps the balance at or above
// the type minimum. Callers must hold the account's row lock; the check is
// only meaningful against the locked balance.
func (a *Account) ValidateDebit(amount money.Money) error {
	remaining, err := a.Balance.Subtract(amount)
	if err != nil {
		return err
	}
	min, err := a.MinimumBalance()
	if err != nil {
		return err
	}
	if below, err := remaining.LessThan(min); err != nil {
		return err
	} else if below {
		return ErrInsufficientFunds
	}
	return nil
}

// Credit adds amount to the balance.
func (a *Account) Credit(amount money.Money) error {
	balance, err := a.Balance.Add(amount)
	if err != nil {
		return err
	}
	a.Balance = balance
	return nil
}

// Debit removes amount from the balance after validating the minimum.
func (a *Account) Debit(amount money.Money) error {
	if err := a.ValidateDebit(amount); err != nil {
		return err
	}
	balance, err := a.Balance.Subtract(amount)
	if err != nil {
		return err
	}
	a.Balance = balance
	return nil
}
