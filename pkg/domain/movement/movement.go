package movement

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrMovementNotFound is returned when no movement matches a lookup.
	ErrMovementNotFound = errors.New("movement not found")
	// ErrInvalidStatusTransition is returned for a status change the ledger forbids.
	ErrInvalidStatusTransition = errors.New("invalid movement status transition")
)

// Category classifies how the money moved.
type Category string

const (
	CategoryWire       Category = "WIRE"
	CategoryInternal   Category = "INTERNAL"
	CategoryCommission Category = "COMMISSION"
)

// Direction is relative to the owning account.
type Direction string

const (
	DirectionInbound  Direction = "INBOUND"
	DirectionOutbound Direction = "OUTBOUND"
)

// Status is the settlement state of a movement.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusReversed   Status = "REVERSED"
)

// transitions lists the allowed status changes. COMPLETED may still be
// reversed when the gateway reports a devolution.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCompleted, StatusFailed},
	StatusProcessing: {StatusCompleted, StatusFailed},
	StatusCompleted:  {StatusReversed},
}

// CanTransition reports whether a movement may go from one status to another.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Movement is one ledger row. All movements produced by a transfer share
// the same TrackingCode.
type Movement struct {
	ID                  uuid.UUID
	AccountID           uuid.UUID
	Category            Category
	Direction           Direction
	Status              Status
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

// FinalAmount is amount plus commission for outbound movements and amount
// minus commission for inbound ones.
func FinalAmount(direction Direction, amount, commission decimal.Decimal) decimal.Decimal {
	if direction == DirectionOutbound {
		return amount.Add(commission)
	}
	return amount.Sub(commission)
}

// TrackingDigits is the number of random digits appended to the prefix.
const TrackingDigits = 8

// NewTrackingCode returns prefix followed by TrackingDigits random digits
// read from r (crypto/rand.Reader in production).
func NewTrackingCode(r io.Reader, prefix string) (string, error) {
	return randomDigits(r, prefix, TrackingDigits)
}

// NewNumericReference returns the 6-digit payment reference the gateway
// requires on every outbound wire.
func NewNumericReference(r io.Reader) (string, error) {
	return randomDigits(r, "", 6)
}

func randomDigits(r io.Reader, prefix string, digits int) (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(r, limit)
	if err != nil {
		return "", fmt.Errorf("generate random digits: %w", err)
	}
	return fmt.Sprintf("%s%0*d", prefix, digits, n.Int64()), nil
}
