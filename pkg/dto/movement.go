package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementRead is a read-optimized DTO for ledger rows.
type MovementRead struct {
	ID                  uuid.UUID
	AccountID           uuid.UUID
	Category            string
	Direction           string
	Status              string
	Amount              decimal.Decimal
	Commission          decimal.Decimal
	FinalAmount         decimal.Decimal
	TrackingCode        string
	CounterpartyName    string
	CounterpartyBank    string
	CounterpartyAccount string
	Concept             string
	SecondaryConcept    string
	Metadata            map[string]any
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// MovementCreate is a DTO for appending a ledger row.
type MovementCreate struct {
	ID                  uuid.UUID
	AccountID           uuid.UUID
	Category            string
	Direction           string
	Status              string
	Amount              decimal.Decimal
	Commission          decimal.Decimal
	FinalAmount         decimal.Decimal
	TrackingCode        string
	CounterpartyName    string
	CounterpartyBank    string
	CounterpartyAccount string
	Concept             string
	SecondaryConcept    string
	Metadata            map[string]any
}

// MovementUpdate changes the status of a row. Metadata keys are merged into
// the stored metadata.
type MovementUpdate struct {
	Status   *string
	Metadata map[string]any
}
