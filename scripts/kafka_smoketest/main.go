// Command kafka_smoketest publishes a notification request through the Kafka
// bus and waits for the consumer group to deliver it.
//
// Usage: KAFKA_BROKERS=localhost:9092 go run ./scripts/kafka_smoketest
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	infraeventbus "github.com/amirasaad/studentrelief/infra/eventbus"
	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/domain/events"
	"github.com/google/uuid"
)

// RunSmokeTest round-trips one event through a fresh consumer group.
func RunSmokeTest() error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS"))
	if brokers == "" {
		brokers = "localhost:9092"
	}
	cfg := &config.Kafka{
		Brokers:     brokers,
		GroupID:     "studentrelief-smoke-" + uuid.NewString()[:8],
		TopicPrefix: "studentrelief.smoke",
	}

	bus, err := infraeventbus.NewWithKafka(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = bus.Close() }()

	want := uuid.New()
	got := make(chan uuid.UUID, 1)
	bus.Register(events.EventTypeNotificationRequested, func(_ context.Context, e events.Event) error {
		if nr, ok := e.(*events.NotificationRequested); ok {
			select {
			case got <- nr.Notification.ID:
			default:
			}
		}
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// the consumer group joins asynchronously; keep publishing until it reads one
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		err := bus.Emit(ctx, &events.NotificationRequested{Notification: domain.Notification{
			ID:     want,
			UserID: uuid.New(),
			Title:  "Smoke test",
			Type:   domain.NotificationDocumentUpload,
		}})
		if err != nil {
			logger.Warn("publish failed", "error", err)
		}
		select {
		case id := <-got:
			if id != want {
				return errors.New("received an unexpected notification id")
			}
			logger.Info("✅ Kafka round trip ok", "brokers", brokers, "group", cfg.GroupID)
			return nil
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func main() {
	if err := RunSmokeTest(); err != nil {
		slog.Error("smoke test failed", "error", err)
		os.Exit(1)
	}
}
