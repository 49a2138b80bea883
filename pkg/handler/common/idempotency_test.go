package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/domain/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notificationEvent() *events.NotificationRequested {
	return &events.NotificationRequested{Notification: domain.Notification{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Title:  "Verification Approved",
		Type:   domain.NotificationVerificationStatus,
	}}
}

func byNotificationID(e events.Event) string {
	if n, ok := e.(*events.NotificationRequested); ok {
		return n.Notification.ID.String()
	}
	return ""
}

func TestIdempotencyTracker_Once(t *testing.T) {
	t.Parallel()
	tracker := NewIdempotencyTracker()

	ran, err := tracker.Once("evt_1", func() error { return errors.New("timeout") })
	assert.True(t, ran)
	require.Error(t, err)
	assert.False(t, tracker.Seen("evt_1"))

	ran, err = tracker.Once("evt_1", func() error { return nil })
	require.NoError(t, err)
	assert.True(t, ran)
	assert.True(t, tracker.Seen("evt_1"))

	ran, err = tracker.Once("evt_1", func() error { t.Fatal("must not run"); return nil })
	require.NoError(t, err)
	assert.False(t, ran)

	tracker.Forget("evt_1")
	assert.False(t, tracker.Seen("evt_1"))
}

func TestIdempotencyTracker_KeysExpire(t *testing.T) {
	t.Parallel()
	var mu sync.Mutex
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { mu.Lock(); defer mu.Unlock(); return now }
	advance := func(d time.Duration) { mu.Lock(); now = now.Add(d); mu.Unlock() }

	tracker := NewIdempotencyTracker(WithTTL(time.Hour), WithClock(clock))
	tracker.Mark("notif_1")
	assert.True(t, tracker.Seen("notif_1"))

	advance(2 * time.Hour)
	assert.False(t, tracker.Seen("notif_1"))
	assert.Zero(t, tracker.Len())

	ran, err := tracker.Once("notif_1", func() error { return nil })
	require.NoError(t, err)
	assert.True(t, ran, "an expired key runs again")
}

func TestIdempotencyTracker_SweepBoundsMemory(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time { mu.Lock(); defer mu.Unlock(); return now }

	tracker := NewIdempotencyTracker(WithTTL(time.Minute), WithClock(clock))
	for i := range sweepEvery - 1 {
		tracker.Mark(fmt.Sprintf("old_%d", i))
	}
	assert.Equal(t, sweepEvery-1, tracker.Len())

	mu.Lock()
	now = now.Add(time.Hour)
	mu.Unlock()
	tracker.Mark("fresh")

	assert.Equal(t, 1, tracker.Len())
	assert.True(t, tracker.Seen("fresh"))
}

func TestWithIdempotency(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("duplicate notification is persisted once", func(t *testing.T) {
		t.Parallel()
		var calls int
		h := WithIdempotency(func(context.Context, events.Event) error {
			calls++
			return nil
		}, NewIdempotencyTracker(), byNotificationID, "NotificationRequested", logger)

		evt := notificationEvent()
		require.NoError(t, h(ctx, evt))
		require.NoError(t, h(ctx, evt))
		require.NoError(t, h(ctx, notificationEvent()))
		assert.Equal(t, 2, calls)
	})

	t.Run("failed delivery can be retried", func(t *testing.T) {
		t.Parallel()
		tracker := NewIdempotencyTracker()
		dbDown := errors.New("db down")
		fail := true
		h := WithIdempotency(func(context.Context, events.Event) error {
			if fail {
				return dbDown
			}
			return nil
		}, tracker, byNotificationID, "NotificationRequested", logger)

		evt := notificationEvent()
		assert.ErrorIs(t, h(ctx, evt), dbDown)
		assert.False(t, tracker.Seen(evt.Notification.ID.String()))

		fail = false
		require.NoError(t, h(ctx, evt))
		assert.True(t, tracker.Seen(evt.Notification.ID.String()))
	})

	t.Run("events without a key always run", func(t *testing.T) {
		t.Parallel()
		var calls int
		h := WithIdempotency(func(context.Context, events.Event) error {
			calls++
			return nil
		}, NewIdempotencyTracker(), byNotificationID, "DonationCompleted", nil)

		evt := &events.DonationCompleted{}
		require.NoError(t, h(ctx, evt))
		require.NoError(t, h(ctx, evt))
		assert.Equal(t, 2, calls)
	})
}

func TestCollapse(t *testing.T) {
	t.Parallel()

	t.Run("concurrent webhook deliveries share one execution", func(t *testing.T) {
		t.Parallel()
		tracker := NewIdempotencyTracker()
		var calls atomic.Int32
		release := make(chan struct{})

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := tracker.Collapse("evt_stripe_1", func() error {
					calls.Add(1)
					<-release
					return nil
				})
				assert.NoError(t, err)
			}()
		}
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("sequential calls run again", func(t *testing.T) {
		t.Parallel()
		tracker := NewIdempotencyTracker()
		calls := 0
		for range 2 {
			_, err := tracker.Collapse("evt_stripe_2", func() error {
				calls++
				return nil
			})
			require.NoError(t, err)
		}
		assert.Equal(t, 2, calls)
		assert.False(t, tracker.Seen("evt_stripe_2"))
	})
}
