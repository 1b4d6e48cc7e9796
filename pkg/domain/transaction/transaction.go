// Package transaction contains the ledger entry aggregate: transaction
// types, the status state machine, reference numbering and the high-value
// approval rule.
package transaction

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/revobank/revobank/pkg/money"
)

var (
	// ErrTransactionNotFound is returned when a transaction does not exist
	// or involves none of the caller's accounts.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrInvalidAmount is returned for zero or negative amounts.
	ErrInvalidAmount = errors.New("transaction amount must be positive")
	// ErrInvalidType is returned for an unrecognized transaction type.
	ErrInvalidType = errors.New("invalid transaction type")
	// ErrInvalidStatus is returned for an unrecognized transaction status.
	ErrInvalidStatus = errors.New("invalid transaction status")
	// ErrNotPendingApproval is returned when an approval targets a
	// transaction that is not awaiting one.
	ErrNotPendingApproval = errors.New("transaction is not pending approval")
	// ErrInvalidTransition is returned for a status change the state
	// machine does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Type is the kind of money movement a transaction records.
type Type string

const (
	TypeDeposit  Type = "deposit"
	TypeWithdraw Type = "withdraw"
	TypeTransfer Type = "transfer"
)

// ParseType validates a transaction type string.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeDeposit, TypeWithdraw, TypeTransfer:
		return t, nil
	default:
		return "", ErrInvalidType
	}
}

// Status is the settlement state of a transaction.
type Status string

const (
	StatusCompleted       Status = "completed"
	StatusPendingApproval Status = "pending_approval"
	StatusFailed          Status = "failed"
	StatusCancelled       Status = "cancelled"
)

// ParseStatus validates a transaction status string.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusCompleted, StatusPendingApproval, StatusFailed, StatusCancelled:
		return st, nil
	default:
		return "", ErrInvalidStatus
	}
}

// CanTransitionTo reports whether the state machine allows moving from s to
// next. Completed, failed and cancelled are terminal; only pending_approval
// advances.
func (s Status) CanTransitionTo(next Status) bool {
	if s != StatusPendingApproval {
		return false
	}
	switch next {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// HighValueThreshold is the amount, in main units of the account's
// currency, above which a transfer needs explicit approval before balances
// move.
const HighValueThreshold = 50_000_000

// RequiresApproval reports whether a transfer of the given amount must be
// queued for approval instead of settling immediately.
func RequiresApproval(amount money.Money) (bool, error) {
	threshold, err := money.New(HighValueThreshold, amount.Currency())
	if err != nil {
		return false, err
	}
	over, err := threshold.LessThan(amount)
	if err != nil {
		return false, err
	}
	return over, nil
}

const referenceSuffixLen = 8

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewReferenceNumber generates a candidate reference number of the form
// TRX<YYYYMMDD><8 random alphanumerics>. The date+random suffix is not
// guaranteed unique; the store enforces uniqueness and callers retry.
func NewReferenceNumber(now time.Time) string {
	var b strings.Builder
	b.WriteString("TRX")
	b.WriteString(now.Format("20060102"))
	for i := 0; i < referenceSuffixLen; i++ {
		b.WriteByte(referenceAlphabet[rand.Intn(len(referenceAlphabet))])
	}
	return b.String()
}

// Transaction is one immutable ledger entry. Ledger entries are created by
// the engine, advanced only by the approval workflow, and never deleted.
type Transaction struct {
	ID                 uint
	ReferenceNumber    string
	Type               Type
	Amount             money.Money
	AccountID          uint
	RecipientAccountID *uint
	Description        string
	Status             Status
	IdempotencyKey     *string
	Timestamp          time.Time
}

// New builds a ledger entry with a fresh reference number.
func New(t Type, amount money.Money, accountID uint, status Status, description string) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	now := time.Now().UTC()
	return &Transaction{
		ReferenceNumber: NewReferenceNumber(now),
		Type:            t,
		Amount:          amount,
		AccountID:       accountID,
		Status:          status,
		Description:     description,
		Timestamp:       now,
	}, nil
}

// Advance moves the transaction to next, enforcing the state machine.
func (tx *Transaction) Advance(next Status) error {
	if tx.Status != StatusPendingApproval {
		return ErrNotPendingApproval
	}
	if !tx.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	tx.Status = next
	return nil
}
