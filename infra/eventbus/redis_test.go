package eventbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/amirasaad/studentrelief/pkg/domain/events"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisBus starts a Redis container using testcontainers-go and returns a
// RedisEventBus and a cleanup function.
func setupRedisBus(tb testing.TB) (*RedisEventBus, func()) {
	tb.Helper()
	if testing.Short() {
		tb.Skip("skipping redis integration test in short mode")
	}
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7.0.5",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		tb.Skipf("docker not available: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	require.NoError(tb, err)
	host, err := container.Host(ctx)
	require.NoError(tb, err)

	bus, err := NewWithRedis(&config.Redis{
		URL:          "redis://" + host + ":" + port.Port(),
		KeyPrefix:    "test",
		DialTimeout:  5 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 3 * time.Second,
	}, discardLogger())
	require.NoError(tb, err)

	return bus, func() {
		_ = bus.Close()
		_ = container.Terminate(ctx)
	}
}

func TestRedisBusHandlerReceivesEvent(t *testing.T) {
	bus, cleanup := setupRedisBus(t)
	defer cleanup()

	received := make(chan string, 1)
	bus.Register(events.EventTypeNotificationRequested, func(_ context.Context, e events.Event) error {
		received <- e.(*events.NotificationRequested).Notification.Title
		return nil
	})

	require.NoError(t, bus.Emit(context.Background(), notificationEvent("hello")))

	select {
	case msg := <-received:
		require.Equal(t, "hello", msg)
	case <-time.After(5 * time.Second):
		t.Fatal("handler did not receive event in time")
	}
}

func TestRedisBusDLQ(t *testing.T) {
	bus, cleanup := setupRedisBus(t)
	defer cleanup()
	ctx := context.Background()

	bus.Register(events.EventTypeNotificationRequested, func(context.Context, events.Event) error {
		return errors.New("simulated failure")
	})
	require.NoError(t, bus.Emit(ctx, notificationEvent("should go to DLQ")))

	dlq := dlqStreamName("test", events.EventTypeNotificationRequested)
	require.Eventually(t, func() bool {
		res, err := bus.client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{dlq, "0"},
			Count:   1,
			Block:   100 * time.Millisecond,
		}).Result()
		return err == nil && len(res) == 1 && len(res[0].Messages) == 1
	}, 5*time.Second, 100*time.Millisecond)
}
