// Package app wires the services together and registers the event bus
// handlers of the application.
package app

import (
	"github.com/amirasaad/speibank/pkg/domain/events"
	"github.com/amirasaad/speibank/pkg/handler/audit"
	handlercommon "github.com/amirasaad/speibank/pkg/handler/common"
)

// setupEventBus registers all event handlers with the event Bus.
func (a *App) setupEventBus() {
	bus := a.Deps.EventBus
	if bus == nil {
		return
	}
	logger := a.Deps.Logger
	tracker := handlercommon.NewIdempotencyTracker()

	auditHandler := audit.HandleTransferEvent(logger)
	for _, t := range []events.EventType{
		events.EventTypeTransferCompleted,
		events.EventTypeTransferFailed,
		events.EventTypeInboundCredited,
		events.EventTypeSettlementReturned,
	} {
		bus.Register(t, handlercommon.WithIdempotency(auditHandler, tracker, nil, "audit", logger))
	}

	// A resolved wire that fails again must reach the queue again.
	a.Reconciliation.OnResolve(func(trackingCode string) {
		tracker.Forget("reconcile", events.KeyOf(events.TransferLedgerFailed{
			TransferEvent: events.TransferEvent{TrackingCode: trackingCode},
		}))
	})
	bus.Register(
		events.EventTypeTransferLedgerFailed,
		handlercommon.WithIdempotency(
			a.Reconciliation.HandleLedgerFailed(logger),
			tracker,
			nil,
			"reconcile",
			logger,
		),
	)
}
