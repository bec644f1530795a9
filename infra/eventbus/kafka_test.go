//go:build integration

package eventbus

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/amirasaad/speibank/pkg/config"
	"github.com/amirasaad/speibank/pkg/domain/events"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func TestKafkaBus_HandlerReceivesEvent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)

	bus, err := NewWithKafka(&config.Kafka{
		Brokers:     strings.Join(brokers, ","),
		TopicPrefix: "test.events",
		GroupID:     "test",
	}, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })

	received := make(chan string, 1)
	bus.Register(events.EventTypeInboundCredited, func(ctx context.Context, e events.Event) error {
		received <- e.(*events.InboundCredited).TrackingCode
		return nil
	})
	require.NoError(t, bus.Emit(ctx, events.InboundCredited{TrackingCode: "IN-1"}))

	select {
	case code := <-received:
		require.Equal(t, "IN-1", code)
	case <-time.After(60 * time.Second):
		t.Fatal("event not received")
	}
}
