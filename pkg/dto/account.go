package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRead is a read-optimized DTO for account queries and API responses.
type AccountRead struct {
	ID                 uuid.UUID
	Email              string
	GivenName          string
	FamilyName         string
	Clabe              string
	Balance            decimal.Decimal
	OutboundCommission decimal.Decimal
	Status             string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AccountCreate is a DTO for creating a new account.
type AccountCreate struct {
	ID                 uuid.UUID
	Email              string
	GivenName          string
	FamilyName         string
	Clabe              string
	Balance            decimal.Decimal
	OutboundCommission decimal.Decimal
	Status             string
}

// AccountUpdate is a DTO for updating profile fields. Balances are changed
// only through the balance operations of the repository.
type AccountUpdate struct {
	GivenName          *string
	FamilyName         *string
	Email              *string
	OutboundCommission *decimal.Decimal
	Status             *string
}
