// Package commission decides the fee charged on an outbound transfer.
package commission

import (
	"strings"

	"github.com/amirasaad/speibank/pkg/domain/money"
	"github.com/shopspring/decimal"
)

// DefaultInternalPrefix identifies this system's CLABE range.
const DefaultInternalPrefix = "6461802180"

// DefaultFee applies to external transfers when the sender has no fee set.
var DefaultFee = decimal.RequireFromString("5.80")

// Policy classifies transfers and prices them.
type Policy struct {
	internalPrefix string
	defaultFee     decimal.Decimal
}

// NewPolicy returns a policy for the given internal CLABE prefix. Empty or
// non-positive arguments fall back to the package defaults.
func NewPolicy(internalPrefix string, defaultFee decimal.Decimal) *Policy {
	if internalPrefix == "" {
		internalPrefix = DefaultInternalPrefix
	}
	if !defaultFee.IsPositive() {
		defaultFee = DefaultFee
	}
	return &Policy{internalPrefix: internalPrefix, defaultFee: money.Normalize(defaultFee)}
}

// InternalPrefix returns the configured prefix.
func (p *Policy) InternalPrefix() string { return p.internalPrefix }

// IsInternal reports whether accountNumber belongs to this system's range,
// regardless of the account type the caller declared.
func (p *Policy) IsInternal(accountNumber string) bool {
	return strings.HasPrefix(strings.TrimSpace(accountNumber), p.internalPrefix)
}

// Compute returns zero for internal transfers and the sender's fixed fee,
// or the default when unset, for external ones.
func (p *Policy) Compute(isInternal bool, senderFixedFee decimal.Decimal) decimal.Decimal {
	if isInternal {
		return decimal.Zero
	}
	if senderFixedFee.IsPositive() {
		return money.Normalize(senderFixedFee)
	}
	return p.defaultFee
}

// TotalDebit is amount plus commission.
func TotalDebit(amount, commission decimal.Decimal) decimal.Decimal {
	return money.Normalize(amount.Add(commission))
}
