package common

import (
	"context"
	"log/slog"
	"sync"

	"github.com/amirasaad/speibank/pkg/domain/events"
	"github.com/amirasaad/speibank/pkg/eventbus"
	"golang.org/x/sync/singleflight"
)

// KeyExtractor returns the idempotency key of an event, or "" when the event
// carries none.
type KeyExtractor func(events.Event) string

// IdempotencyTracker remembers which handler already applied which event.
// Keys are scoped per handler, so one tracker can be shared by every
// subscription of the bus.
type IdempotencyTracker struct {
	done     sync.Map
	inflight singleflight.Group
}

func NewIdempotencyTracker() *IdempotencyTracker {
	return &IdempotencyTracker{}
}

func scoped(handlerName, key string) string { return handlerName + "|" + key }

// MarkDone records that handlerName applied key.
func (t *IdempotencyTracker) MarkDone(handlerName, key string) {
	t.done.Store(scoped(handlerName, key), struct{}{})
}

// Forget lets handlerName apply key again.
func (t *IdempotencyTracker) Forget(handlerName, key string) {
	t.done.Delete(scoped(handlerName, key))
}

// Done reports whether handlerName already applied key.
func (t *IdempotencyTracker) Done(handlerName, key string) bool {
	_, ok := t.done.Load(scoped(handlerName, key))
	return ok
}

// WithIdempotency wraps a handler so that an event redelivered by an
// at-least-once bus runs it only once. A failed run leaves the key unmarked
// so the next delivery retries. Keys default to events.KeyOf.
func WithIdempotency(
	handler eventbus.HandlerFunc,
	tracker *IdempotencyTracker,
	keyExtractor KeyExtractor,
	handlerName string,
	logger *slog.Logger,
) eventbus.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	if keyExtractor == nil {
		keyExtractor = events.KeyOf
	}
	return func(ctx context.Context, e events.Event) error {
		key := keyExtractor(e)
		if key == "" {
			return handler(ctx, e)
		}
		if tracker.Done(handlerName, key) {
			logger.Info("🔁 [SKIP] Event already processed",
				"handler", handlerName, "event_type", e.Type(), "idempotency_key", key)
			return nil
		}

		// Concurrent deliveries of one key wait for the same attempt.
		_, err, _ := tracker.inflight.Do(scoped(handlerName, key), func() (any, error) {
			if tracker.Done(handlerName, key) {
				return nil, nil
			}
			if err := handler(ctx, e); err != nil {
				return nil, err
			}
			tracker.MarkDone(handlerName, key)
			return nil, nil
		})
		return err
	}
}
