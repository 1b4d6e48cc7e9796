// Package currency holds static metadata for the ISO 4217 codes the system
// accepts. Balances are never converted between currencies; the table exists
// so that money amounts can be scaled to their smallest unit correctly.
package currency

import (
	"errors"
	"regexp"
)

const (
	// DefaultCurrency is the fallback currency code for new accounts.
	DefaultCurrency = Code("IDR")
	// DefaultDecimals is the number of decimal places assumed for unknown codes.
	DefaultDecimals = 2
)

// ErrUnsupportedCurrency is returned when a currency code is well formed but
// not registered.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Code represents an ISO 4217 currency code (e.g. "IDR", "USD").
type Code string

func (c Code) String() string { return string(c) }

// Meta holds currency-specific metadata.
type Meta struct {
	Decimals int
	Symbol   string
}

var supported = map[Code]Meta{
	"IDR": {Decimals: 2, Symbol: "Rp"},
	"USD": {Decimals: 2, Symbol: "$"},
	"EUR": {Decimals: 2, Symbol: "€"},
	"SGD": {Decimals: 2, Symbol: "S$"},
	"JPY": {Decimals: 0, Symbol: "¥"},
	"GBP": {Decimals: 2, Symbol: "£"},
	"AUD": {Decimals: 2, Symbol: "A$"},
	"MYR": {Decimals: 2, Symbol: "RM"},
}

var codeFormat = regexp.MustCompile(`^[A-Z]{3}$`)

// IsValidFormat reports whether the string looks like an ISO 4217 code
// (three uppercase letters). It does not imply the code is supported.
func IsValidFormat(code string) bool {
	return codeFormat.MatchString(code)
}

// IsSupported reports whether the code is registered.
func IsSupported(code Code) bool {
	_, ok := supported[code]
	return ok
}

// Get returns the metadata for a supported currency code.
func Get(code Code) (Meta, error) {
	meta, ok := supported[code]
	if !ok {
		return Meta{}, ErrUnsupportedCurrency
	}
	return meta, nil
}

// ListSupported returns all registered currency codes.
func ListSupported() []Code {
	codes := make([]Code, 0, len(supported))
	for code := range supported {
		codes = append(codes, code)
	}
	return codes
}
