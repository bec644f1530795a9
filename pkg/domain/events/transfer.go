// Package events defines the transfer lifecycle events published on the bus.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is anything the bus can carry.
type Event interface {
	Type() string
}

// EventType names a kind of event.
type EventType string

const (
	EventTypeTransferCompleted    EventType = "transfer.completed"
	EventTypeTransferFailed       EventType = "transfer.failed"
	EventTypeTransferLedgerFailed EventType = "transfer.ledger_failed"
	EventTypeInboundCredited      EventType = "inbound.credited"
	EventTypeSettlementReturned   EventType = "settlement.returned"
)

func (t EventType) String() string { return string(t) }

// TransferEvent carries the context common to every transfer event.
type TransferEvent struct {
	SenderID         uuid.UUID       `json:"sender_id"`
	RecipientID      uuid.UUID       `json:"recipient_id,omitempty"`
	RecipientAccount string          `json:"recipient_account"`
	TrackingCode     string          `json:"tracking_code"`
	Amount           decimal.Decimal `json:"amount"`
	Commission       decimal.Decimal `json:"commission"`
	Internal         bool            `json:"internal"`
	OccurredAt       time.Time       `json:"occurred_at"`
}

// TransferCompleted is emitted after ledger writes and balance updates.
type TransferCompleted struct {
	TransferEvent
	NewBalance decimal.Decimal `json:"new_balance"`
}

func (TransferCompleted) Type() string { return EventTypeTransferCompleted.String() }

// TransferFailed is emitted when a transfer is rejected before commit.
type TransferFailed struct {
	TransferEvent
	Reason string `json:"reason"`
}

func (TransferFailed) Type() string { return EventTypeTransferFailed.String() }

// TransferLedgerFailed is emitted when the gateway confirmed a wire but the
// local ledger could not record it. It holds what a reconciler needs to
// replay the bookkeeping.
type TransferLedgerFailed struct {
	TransferEvent
	GatewayTrackingID string `json:"gateway_tracking_id"`
	Stage             string `json:"stage"`
	Reason            string `json:"reason"`
}

func (TransferLedgerFailed) Type() string { return EventTypeTransferLedgerFailed.String() }

// InboundCredited is emitted when an incoming wire is booked.
type InboundCredited struct {
	AccountID    uuid.UUID       `json:"account_id"`
	TrackingCode string          `json:"tracking_code"`
	Amount       decimal.Decimal `json:"amount"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

func (InboundCredited) Type() string { return EventTypeInboundCredited.String() }

// SettlementReturned is emitted when the gateway reports a devolution.
type SettlementReturned struct {
	AccountID    uuid.UUID `json:"account_id"`
	TrackingCode string    `json:"tracking_code"`
	Reason       string    `json:"reason"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func (SettlementReturned) Type() string { return EventTypeSettlementReturned.String() }
