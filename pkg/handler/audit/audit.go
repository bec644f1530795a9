// Package audit holds bus handlers that leave an operational trail of the
// transfer lifecycle.
package audit

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/amirasaad/speibank/pkg/domain/events"
	"github.com/amirasaad/speibank/pkg/domain/money"
	"github.com/amirasaad/speibank/pkg/eventbus"
)

// HandleTransferEvent logs completed and failed transfers.
func HandleTransferEvent(logger *slog.Logger) eventbus.HandlerFunc {
	return func(_ context.Context, e events.Event) error {
		log := logger.With("handler", "audit", "event_type", e.Type())
		switch ev := deref(e).(type) {
		case events.TransferCompleted:
			log.Info("✅ [AUDIT] Transfer completed",
				"tracking_code", ev.TrackingCode,
				"sender_id", ev.SenderID,
				"amount", money.Format(ev.Amount),
				"commission", money.Format(ev.Commission),
				"internal", ev.Internal,
			)
		case events.TransferFailed:
			log.Warn("❌ [AUDIT] Transfer failed",
				"tracking_code", ev.TrackingCode,
				"sender_id", ev.SenderID,
				"reason", ev.Reason,
			)
		case events.InboundCredited:
			log.Info("✅ [AUDIT] Inbound wire credited",
				"tracking_code", ev.TrackingCode,
				"account_id", ev.AccountID,
				"amount", money.Format(ev.Amount),
			)
		case events.SettlementReturned:
			log.Warn("↩️ [AUDIT] Wire returned",
				"tracking_code", ev.TrackingCode,
				"account_id", ev.AccountID,
				"reason", ev.Reason,
			)
		default:
			log.Debug("event ignored")
		}
		return nil
	}
}

// Reconciliation collects wires the gateway confirmed but the ledger never
// recorded. Operators drain it and replay the bookkeeping by hand.
type Reconciliation struct {
	mu        sync.Mutex
	pending   map[string]events.TransferLedgerFailed
	onResolve []func(trackingCode string)
}

// NewReconciliation creates an empty queue.
func NewReconciliation() *Reconciliation {
	return &Reconciliation{pending: make(map[string]events.TransferLedgerFailed)}
}

// Pending returns the queued failures.
func (r *Reconciliation) Pending() []events.TransferLedgerFailed {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.TransferLedgerFailed, 0, len(r.pending))
	for _, ev := range r.pending {
		out = append(out, ev)
	}
	return out
}

// OnResolve registers fn to run after a tracking code leaves the queue.
func (r *Reconciliation) OnResolve(fn func(trackingCode string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onResolve = append(r.onResolve, fn)
}

// Resolve drops a tracking code from the queue and reports whether it was
// queued. A later failure of the same wire is queued again.
func (r *Reconciliation) Resolve(trackingCode string) bool {
	r.mu.Lock()
	_, ok := r.pending[trackingCode]
	delete(r.pending, trackingCode)
	hooks := slices.Clone(r.onResolve)
	r.mu.Unlock()

	if ok {
		for _, fn := range hooks {
			fn(trackingCode)
		}
	}
	return ok
}

// HandleLedgerFailed records a post-settlement ledger failure.
func (r *Reconciliation) HandleLedgerFailed(logger *slog.Logger) eventbus.HandlerFunc {
	return func(_ context.Context, e events.Event) error {
		ev, ok := deref(e).(events.TransferLedgerFailed)
		if !ok {
			return nil
		}
		r.mu.Lock()
		r.pending[ev.TrackingCode] = ev
		r.mu.Unlock()
		logger.Error("🚨 [RECONCILE] Wire settled without ledger entry",
			"handler", "reconcile",
			"tracking_code", ev.TrackingCode,
			"gateway_tracking_id", ev.GatewayTrackingID,
			"sender_id", ev.SenderID,
			"amount", money.Format(ev.Amount),
			"commission", money.Format(ev.Commission),
			"stage", ev.Stage,
			"reason", ev.Reason,
		)
		return nil
	}
}

// deref turns the pointer form produced by transport decoding into the
// value form emitted in-process.
func deref(e events.Event) events.Event {
	switch ev := e.(type) {
	case *events.TransferCompleted:
		return *ev
	case *events.TransferFailed:
		return *ev
	case *events.TransferLedgerFailed:
		return *ev
	case *events.InboundCredited:
		return *ev
	case *events.SettlementReturned:
		return *ev
	}
	return e
}
