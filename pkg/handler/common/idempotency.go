package common

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/amirasaad/studentrelief/pkg/domain/events"
	"github.com/amirasaad/studentrelief/pkg/eventbus"
	"golang.org/x/sync/singleflight"
)

// KeyExtractor derives the deduplication key of an event. An empty key
// disables deduplication for that event.
type KeyExtractor func(events.Event) string

const (
	defaultTrackerTTL = 24 * time.Hour
	// expired keys are swept once every sweepEvery marks
	sweepEvery = 1024
)

// IdempotencyTracker remembers keys handled by this process and collapses
// concurrent work on one key into a single execution. It is an in-memory
// fast path; durable deduplication belongs to the database, so a key is
// only remembered for ttl.
type IdempotencyTracker struct {
	done     sync.Map // key -> expiry time.Time
	marks    atomic.Int64
	ttl      time.Duration
	now      func() time.Time
	inflight singleflight.Group
}

type TrackerOption func(*IdempotencyTracker)

// WithTTL sets how long a completed key is remembered.
func WithTTL(ttl time.Duration) TrackerOption {
	return func(t *IdempotencyTracker) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *IdempotencyTracker) {
		if now != nil {
			t.now = now
		}
	}
}

func NewIdempotencyTracker(opts ...TrackerOption) *IdempotencyTracker {
	t := &IdempotencyTracker{ttl: defaultTrackerTTL, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Seen reports whether key completed successfully within the ttl.
func (t *IdempotencyTracker) Seen(key string) bool {
	v, ok := t.done.Load(key)
	if !ok {
		return false
	}
	if t.now().After(v.(time.Time)) {
		t.done.CompareAndDelete(key, v)
		return false
	}
	return true
}

func (t *IdempotencyTracker) Mark(key string) {
	t.done.Store(key, t.now().Add(t.ttl))
	if t.marks.Add(1)%sweepEvery == 0 {
		t.sweep()
	}
}

func (t *IdempotencyTracker) Forget(key string) { t.done.Delete(key) }

// Len counts remembered keys, expired ones included until the next sweep.
func (t *IdempotencyTracker) Len() int {
	n := 0
	t.done.Range(func(any, any) bool { n++; return true })
	return n
}

func (t *IdempotencyTracker) sweep() {
	now := t.now()
	t.done.Range(func(k, v any) bool {
		if now.After(v.(time.Time)) {
			t.done.CompareAndDelete(k, v)
		}
		return true
	})
}

// Collapse runs fn once for all concurrent callers sharing key; every caller
// observes the same error. Nothing is remembered after fn returns.
func (t *IdempotencyTracker) Collapse(key string, fn func() error) (shared bool, err error) {
	_, err, shared = t.inflight.Do(key, func() (any, error) {
		return nil, fn()
	})
	return shared, err
}

// Once runs fn unless key already completed, and marks key on success.
// ran is false when the key was skipped.
func (t *IdempotencyTracker) Once(key string, fn func() error) (ran bool, err error) {
	if t.Seen(key) {
		return false, nil
	}
	_, err = t.Collapse(key, func() error {
		if t.Seen(key) {
			return nil
		}
		ran = true
		if err := fn(); err != nil {
			return err
		}
		t.Mark(key)
		return nil
	})
	return ran, err
}

// WithIdempotency skips bus deliveries whose key was already handled. A
// failed delivery leaves the key unmarked so a redelivery can retry it.
func WithIdempotency(
	handler eventbus.HandlerFunc,
	tracker *IdempotencyTracker,
	keyOf KeyExtractor,
	name string,
	logger *slog.Logger,
) eventbus.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, e events.Event) error {
		key := keyOf(e)
		if key == "" {
			return handler(ctx, e)
		}
		ran, err := tracker.Once(key, func() error { return handler(ctx, e) })
		if err == nil && !ran {
			logger.Info("🔁 duplicate delivery skipped",
				"handler", name, "event_type", e.Type(), "key", key)
		}
		return err
	}
}
