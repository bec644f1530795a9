package account

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newAccount(balance string) *Account {
	return &Account{
		ID:         uuid.New(),
		GivenName:  " Ana ",
		FamilyName: "López",
		Balance:    decimal.RequireFromString(balance),
		Status:     StatusActive,
	}
}

func TestAccount_ValidateDebit(t *testing.T) {
	acc := newAccount("500")

	assert.NoError(t, acc.ValidateDebit(decimal.RequireFromString("105.80")))
	assert.NoError(t, acc.ValidateDebit(decimal.RequireFromString("500")), "exact balance must pass")
	assert.ErrorIs(t, acc.ValidateDebit(decimal.RequireFromString("500.01")), ErrInsufficientFunds)

	acc.Status = StatusBlocked
	assert.ErrorIs(t, acc.ValidateDebit(decimal.NewFromInt(1)), ErrAccountInactive)
}

func TestAccount_FullName(t *testing.T) {
	assert.Equal(t, "Ana López", newAccount("0").FullName())
}

func TestValidateClabe(t *testing.T) {
	assert.NoError(t, ValidateClabe("646180218000000001"))
	assert.ErrorIs(t, ValidateClabe("64618021800000000"), ErrInvalidClabe)
	assert.ErrorIs(t, ValidateClabe("64618021800000000X"), ErrInvalidClabe)
}

func TestInsufficientFundsMessage(t *testing.T) {
	assert.Contains(t, ErrInsufficientFunds.Error(), "Insufficient")
}
