package audit

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/amirasaad/speibank/pkg/domain/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleTransferEvent(t *testing.T) {
	var buf bytes.Buffer
	h := HandleTransferEvent(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, h(context.Background(), events.TransferCompleted{
		TransferEvent: events.TransferEvent{TrackingCode: "CEDI00000001", Amount: decimal.NewFromInt(100)},
	}))
	require.NoError(t, h(context.Background(), &events.SettlementReturned{TrackingCode: "CEDI00000002", Reason: "Cuenta cancelada"}))

	out := buf.String()
	assert.Contains(t, out, "tracking_code=CEDI00000001")
	assert.Contains(t, out, "amount=100.00")
	assert.Contains(t, out, "Cuenta cancelada")
}

func TestReconciliation(t *testing.T) {
	r := NewReconciliation()
	h := r.HandleLedgerFailed(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	ev := events.TransferLedgerFailed{
		TransferEvent:     events.TransferEvent{TrackingCode: "CEDI00000003"},
		GatewayTrackingID: "gw-1",
		Stage:             "LEDGER_WRITING",
	}
	require.NoError(t, h(context.Background(), ev))
	require.NoError(t, h(context.Background(), &ev))
	require.NoError(t, h(context.Background(), events.TransferFailed{}))

	pending := r.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "gw-1", pending[0].GatewayTrackingID)

	var resolved []string
	r.OnResolve(func(code string) { resolved = append(resolved, code) })
	assert.True(t, r.Resolve("CEDI00000003"))
	assert.Empty(t, r.Pending())
	assert.False(t, r.Resolve("CEDI00000003"))
	assert.Equal(t, []string{"CEDI00000003"}, resolved)
}
