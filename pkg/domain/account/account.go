package account

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound is returned when an account cannot be found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInsufficientFunds is returned when the total debit exceeds the balance.
	// Mobile clients match on the "Insufficient" prefix.
	ErrInsufficientFunds = errors.New("Insufficient funds") //nolint:staticcheck
	// ErrAccountInactive is returned when a blocked account tries to move money.
	ErrAccountInactive = errors.New("account is not active")
	// ErrInvalidClabe is returned when a CLABE is not 18 digits.
	ErrInvalidClabe = errors.New("clabe must be 18 digits")
)

// Status is the lifecycle state of an account.
type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusBlocked Status = "BLOCKED"
)

// ClabeLength is the length of a CLABE settlement account number.
const ClabeLength = 18

// Account is a customer account held in this system's CLABE range.
//
// Balance is the stored source of truth; it is never recomputed from
// movement history at read time.
type Account struct {
	ID                 uuid.UUID
	Email              string
	GivenName          string
	FamilyName         string
	Clabe              string
	Balance            decimal.Decimal
	OutboundCommission decimal.Decimal
	Status             Status
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// FullName joins given and family names for gateway payloads and receipts.
func (a *Account) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(a.GivenName) + " " + strings.TrimSpace(a.FamilyName))
}

// IsActive reports whether the account may send money.
func (a *Account) IsActive() bool {
	return a.Status == "" || a.Status == StatusActive
}

// ValidateDebit checks that total can leave the account. A total equal to
// the balance is allowed.
func (a *Account) ValidateDebit(total decimal.Decimal) error {
	if !a.IsActive() {
		return ErrAccountInactive
	}
	if total.GreaterThan(a.Balance) {
		return ErrInsufficientFunds
	}
	return nil
}

// IsDigits reports whether s is non-empty and only ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidateClabe checks length and digits. No checksum validation is done.
func ValidateClabe(clabe string) error {
	if len(clabe) != ClabeLength || !IsDigits(clabe) {
		return ErrInvalidClabe
	}
	return nil
}
