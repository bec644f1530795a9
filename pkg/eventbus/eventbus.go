// Package eventbus defines the contract for publishing and consuming
// transfer lifecycle events.
package eventbus

import (
	"context"

	"github.com/amirasaad/speibank/pkg/domain/events"
)

// HandlerFunc processes one event. A returned error marks the delivery as
// failed; transports with a dead-letter queue park the message there.
type HandlerFunc func(ctx context.Context, e events.Event) error

// Bus publishes events and dispatches them to registered handlers.
type Bus interface {
	Emit(ctx context.Context, event events.Event) error
	Register(eventType events.EventType, handler HandlerFunc)
}
