// Package spei defines the contract of the external SPEI settlement gateway.
//
// Implementations own no retry logic. Every Send is at-most-once from the
// caller's point of view and must not be re-invoked after an ambiguous
// failure.
package spei

import "context"

// Gateway executes and queries SPEI wires.
type Gateway interface {
	// Send submits an outbound wire. A non-nil error means the request did
	// not produce a readable answer (transport failure, non-JSON body).
	Send(ctx context.Context, req SendRequest) (SendResult, error)

	// Status queries an outbound wire by tracking code.
	Status(ctx context.Context, trackingCode string) (StatusResult, error)

	// ListInbound returns wires received on the given CLABE.
	ListInbound(ctx context.Context, beneficiaryClabe string) ([]InboundTransfer, error)

	// ValidateDeposit confirms an inbound wire's counterpart data before it
	// is credited.
	ValidateDeposit(ctx context.Context, in InboundTransfer) error
}
