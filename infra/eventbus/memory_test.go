package eventbus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/amirasaad/speibank/pkg/domain/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryEventBus_EmitDispatchesByType(t *testing.T) {
	bus := NewWithMemory(discardLogger())
	var completed, failed int
	bus.Register(events.EventTypeTransferCompleted, func(ctx context.Context, e events.Event) error {
		completed++
		return nil
	})
	bus.Register(events.EventTypeTransferFailed, func(ctx context.Context, e events.Event) error {
		failed++
		return errors.New("handler failure is logged only")
	})

	require.NoError(t, bus.Emit(context.Background(), events.TransferCompleted{}))
	require.NoError(t, bus.Emit(context.Background(), events.TransferFailed{Reason: "x"}))
	require.NoError(t, bus.Emit(context.Background(), events.TransferCompleted{}))

	assert.Equal(t, 2, completed)
	assert.Equal(t, 1, failed)
	assert.Len(t, bus.Published(), 3)

	bus.ClearPublished()
	assert.Empty(t, bus.Published())
}

func TestMemoryAsyncEventBus_DeliversAndRecoversPanics(t *testing.T) {
	bus := NewWithMemoryAsync(discardLogger())
	var delivered atomic.Int32
	bus.Register(events.EventTypeInboundCredited, func(ctx context.Context, e events.Event) error {
		delivered.Add(1)
		return nil
	})
	bus.Register(events.EventTypeInboundCredited, func(ctx context.Context, e events.Event) error {
		panic("boom")
	})

	for range 5 {
		require.NoError(t, bus.Emit(context.Background(), events.InboundCredited{TrackingCode: "T"}))
	}
	bus.Wait()
	assert.Equal(t, int32(5), delivered.Load())
}

func TestEnvelope_RoundTripsConcreteEvent(t *testing.T) {
	in := events.TransferLedgerFailed{
		TransferEvent: events.TransferEvent{
			TrackingCode: "CEDI12345678",
			Amount:       decimal.RequireFromString("100.00"),
		},
		GatewayTrackingID: "gw-1",
		Stage:             "ledger_writing",
		Reason:            "db down",
	}
	raw, err := encodeEnvelope(in)
	require.NoError(t, err)

	out, err := decodeEnvelope(raw)
	require.NoError(t, err)
	got, ok := out.(*events.TransferLedgerFailed)
	require.True(t, ok)
	assert.Equal(t, "gw-1", got.GatewayTrackingID)
	assert.True(t, got.Amount.Equal(in.Amount))

	_, err = decodeEnvelope([]byte(`{"type":"nope","payload":{}}`))
	assert.Error(t, err)
}

func TestStreamNames(t *testing.T) {
	assert.Equal(t, "speibank.events:transfer:completed", streamNameFor("speibank.events", events.EventTypeTransferCompleted))
	assert.Equal(t, "speibank.events:dlq:inbound:credited", dlqStreamName("speibank.events", events.EventTypeInboundCredited))
	assert.Equal(t, "p.transfer.ledger_failed", topicNameFor("p", events.EventTypeTransferLedgerFailed))
	assert.Equal(t, "p.dlq.transfer.failed", dlqTopicNameFor("p", events.EventTypeTransferFailed))
	assert.Equal(t, []string{"a:1", "b:2"}, parseBrokers(" a:1, ,b:2"))
}
