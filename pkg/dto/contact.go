package dto

import (
	"time"

	"github.com/google/uuid"
)

// ContactRead is a read-optimized DTO for saved counterparties.
type ContactRead struct {
	ID         uuid.UUID
	AccountID  uuid.UUID
	Name       string
	Alias      string
	BankName   string
	Clabe      string
	CardNumber string
	Email      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ContactCreate is a DTO for saving a counterparty.
type ContactCreate struct {
	ID         uuid.UUID
	AccountID  uuid.UUID
	Name       string
	Alias      string
	BankName   string
	Clabe      string
	CardNumber string
	Email      string
}

// ContactUpdate is a DTO for partial contact updates.
type ContactUpdate struct {
	Name       *string
	Alias      *string
	BankName   *string
	Clabe      *string
	CardNumber *string
	Email      *string
}
