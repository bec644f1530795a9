//go:build integration

package eventbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirasaad/speibank/pkg/config"
	"github.com/amirasaad/speibank/pkg/domain/events"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedisBus(tb testing.TB) *RedisEventBus {
	tb.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7.0.5",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(tb, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(tb, err)

	bus, err := NewWithRedis(&config.Redis{
		URL:    "redis://" + host + ":" + port.Port(),
		Stream: "test.events",
		Group:  "test",
	}, discardLogger())
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = bus.Close() })
	return bus
}

func TestRedisBus_HandlerReceivesEvent(t *testing.T) {
	bus := setupRedisBus(t)

	received := make(chan string, 1)
	bus.Register(events.EventTypeTransferCompleted, func(ctx context.Context, e events.Event) error {
		received <- e.(*events.TransferCompleted).TrackingCode
		return nil
	})

	ev := events.TransferCompleted{TransferEvent: events.TransferEvent{TrackingCode: "CEDI00000001"}}
	require.NoError(t, bus.Emit(context.Background(), ev))

	select {
	case code := <-received:
		require.Equal(t, "CEDI00000001", code)
	case <-time.After(10 * time.Second):
		t.Fatal("event not received")
	}
}

func TestRedisBus_FailedHandlerGoesToDLQ(t *testing.T) {
	bus := setupRedisBus(t)
	ctx := context.Background()

	done := make(chan struct{}, 1)
	bus.Register(events.EventTypeTransferFailed, func(ctx context.Context, e events.Event) error {
		done <- struct{}{}
		return errors.New("simulated failure")
	})
	require.NoError(t, bus.Emit(ctx, events.TransferFailed{Reason: "x"}))

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("handler not invoked")
	}

	require.Eventually(t, func() bool {
		res, err := bus.client.XRange(ctx, dlqStreamName("test.events", events.EventTypeTransferFailed), "-", "+").Result()
		return err == nil && len(res) == 1
	}, 5*time.Second, 100*time.Millisecond)
}
