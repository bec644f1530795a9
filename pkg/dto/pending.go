package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PendingMovementRead is a read-optimized DTO for queued payment requests.
type PendingMovementRead struct {
	ID                  uuid.UUID
	AccountID           uuid.UUID
	RequestedBy         uuid.UUID
	TeamMemberID        uuid.UUID
	Amount              decimal.Decimal
	Commission          decimal.Decimal
	FinalAmount         decimal.Decimal
	CounterpartyName    string
	CounterpartyAccount string
	AccountType         string
	BankCode            string
	Concept             string
	SecondaryConcept    string
	Status              string
	RejectionReason     string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// PendingMovementCreate is a DTO for queueing a payment request.
type PendingMovementCreate struct {
	ID                  uuid.UUID
	AccountID           uuid.UUID
	RequestedBy         uuid.UUID
	TeamMemberID        uuid.UUID
	Amount              decimal.Decimal
	Commission          decimal.Decimal
	FinalAmount         decimal.Decimal
	CounterpartyName    string
	CounterpartyAccount string
	AccountType         string
	BankCode            string
	Concept             string
	SecondaryConcept    string
	Status              string
}

// PendingMovementUpdate is a DTO for partial pending-movement updates.
type PendingMovementUpdate struct {
	Status          *string
	RejectionReason *string
}

// TeamMemberRead is a read-optimized DTO for team membership.
type TeamMemberRead struct {
	ID              uuid.UUID
	OwnerAccountID  uuid.UUID
	MemberAccountID uuid.UUID
	CanTransfer     bool
	CreatedAt       time.Time
}

// TeamMemberCreate is a DTO for adding a member to a team.
type TeamMemberCreate struct {
	ID              uuid.UUID
	OwnerAccountID  uuid.UUID
	MemberAccountID uuid.UUID
	CanTransfer     bool
}

// Page is a page of results with the total row count.
type Page[T any] struct {
	Items    []T
	Total    int64
	Page     int
	PageSize int
}
