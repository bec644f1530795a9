package common

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/amirasaad/speibank/pkg/domain/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plainEvent struct{}

func (plainEvent) Type() string { return "test.plain" }

func completed(code string) events.TransferCompleted {
	return events.TransferCompleted{TransferEvent: events.TransferEvent{TrackingCode: code}}
}

func TestIdempotencyTracker(t *testing.T) {
	tracker := NewIdempotencyTracker()
	assert.False(t, tracker.Done("audit", "k"))
	tracker.MarkDone("audit", "k")
	assert.True(t, tracker.Done("audit", "k"))
	assert.False(t, tracker.Done("reconcile", "k"), "keys are scoped per handler")
	tracker.Forget("audit", "k")
	assert.False(t, tracker.Done("audit", "k"))
}

func TestWithIdempotency(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("runs unkeyed events every time", func(t *testing.T) {
		calls := 0
		h := WithIdempotency(func(context.Context, events.Event) error { calls++; return nil },
			NewIdempotencyTracker(), nil, "test", logger)
		require.NoError(t, h(ctx, plainEvent{}))
		require.NoError(t, h(ctx, plainEvent{}))
		assert.Equal(t, 2, calls)
	})

	t.Run("skips redelivery of value and pointer forms", func(t *testing.T) {
		calls := 0
		h := WithIdempotency(func(context.Context, events.Event) error { calls++; return nil },
			NewIdempotencyTracker(), nil, "test", logger)
		ev := completed("CEDI00000001")
		require.NoError(t, h(ctx, ev))
		require.NoError(t, h(ctx, &ev))
		assert.Equal(t, 1, calls)
	})

	t.Run("handlers sharing a tracker do not shadow each other", func(t *testing.T) {
		tracker := NewIdempotencyTracker()
		var first, second int
		h1 := WithIdempotency(func(context.Context, events.Event) error { first++; return nil },
			tracker, nil, "audit", logger)
		h2 := WithIdempotency(func(context.Context, events.Event) error { second++; return nil },
			tracker, nil, "notify", logger)
		ev := completed("CEDI00000004")
		require.NoError(t, h1(ctx, ev))
		require.NoError(t, h2(ctx, ev))
		require.NoError(t, h2(ctx, ev))
		assert.Equal(t, 1, first)
		assert.Equal(t, 1, second)
	})

	t.Run("failure allows retry", func(t *testing.T) {
		calls := 0
		fail := true
		h := WithIdempotency(func(context.Context, events.Event) error {
			calls++
			if fail {
				return errors.New("boom")
			}
			return nil
		}, NewIdempotencyTracker(), nil, "test", logger)

		require.Error(t, h(ctx, completed("CEDI00000002")))
		fail = false
		require.NoError(t, h(ctx, completed("CEDI00000002")))
		require.NoError(t, h(ctx, completed("CEDI00000002")))
		assert.Equal(t, 2, calls)
	})

	t.Run("concurrent deliveries run once", func(t *testing.T) {
		var calls atomic.Int32
		h := WithIdempotency(func(context.Context, events.Event) error {
			calls.Add(1)
			return nil
		}, NewIdempotencyTracker(), nil, "test", logger)

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = h(ctx, completed("CEDI00000003"))
			}()
		}
		wg.Wait()
		assert.EqualValues(t, 1, calls.Load())
	})
}

func TestKeyOf(t *testing.T) {
	assert.Equal(t, "transfer.completed:CEDI1", events.KeyOf(completed("CEDI1")))
	assert.Empty(t, events.KeyOf(completed("")))
	assert.Empty(t, events.KeyOf(plainEvent{}))
}
