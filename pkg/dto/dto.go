// Package dto defines the read models and query shapes exchanged between
// the service layer and the web API.
package dto

import (
	"time"
)

// AccountRead is the API representation of an account.
type AccountRead struct {
	ID             uint      `json:"id"`
	AccountNumber  string    `json:"account_number"`
	AccountType    string    `json:"account_type"`
	Balance        float64   `json:"balance"`
	Currency       string    `json:"currency"`
	Status         string    `json:"status"`
	MinimumBalance float64   `json:"minimum_balance"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
}

// AccountTypeRead describes one account type's static policy.
type AccountTypeRead struct {
	Type           string  `json:"type"`
	MinimumBalance float64 `json:"minimum_balance"`
	Description    string  `json:"description"`
}

// AccountFilter narrows account listings.
type AccountFilter struct {
	Type   string
	Status string
}

// TransactionRead is the API representation of a ledger entry.
type TransactionRead struct {
	ID                 uint      `json:"id"`
	ReferenceNumber    string    `json:"reference_number"`
	Type               string    `json:"type"`
	Amount             float64   `json:"amount"`
	Currency           string    `json:"currency"`
	Description        string    `json:"description"`
	Status             string    `json:"status"`
	AccountID          uint      `json:"account_id"`
	RecipientAccountID *uint     `json:"recipient_account_id,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

// TransactionFilter narrows transaction listings. AccountID restricts to
// entries where the account is source or recipient.
type TransactionFilter struct {
	AccountID uint
	Type      string
	Status    string
	Start     *time.Time
	End       *time.Time
}

// Page wraps one page of results with pagination metadata.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewPage computes pagination metadata for a page of items.
func NewPage[T any](items []T, page, limit int, totalItems int64) *Page[T] {
	totalPages := int((totalItems + int64(limit) - 1) / int64(limit))
	return &Page[T]{
		Items:      items,
		Page:       page,
		Limit:      limit,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && totalItems > 0,
	}
}

// UserRead is the API representation of a user profile.
type UserRead struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
