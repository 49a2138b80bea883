// Package notification persists queued notifications and lists them for their recipient.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/domain/events"
	"github.com/amirasaad/studentrelief/pkg/eventbus"
	"github.com/amirasaad/studentrelief/pkg/handler/common"
	"github.com/amirasaad/studentrelief/pkg/repository"
	"github.com/google/uuid"
)

// DefaultListLimit caps how many notifications ListMine returns.
const DefaultListLimit = 50

type Service struct {
	uow     repository.UnitOfWork
	tracker *common.IdempotencyTracker
	logger  *slog.Logger
}

func New(uow repository.UnitOfWork, tracker *common.IdempotencyTracker, logger *slog.Logger) *Service {
	if tracker == nil {
		tracker = common.NewIdempotencyTracker()
	}
	return &Service{uow: uow, tracker: tracker, logger: logger}
}

// Register subscribes the consumer to NotificationRequested on bus.
func (s *Service) Register(bus eventbus.Bus) {
	bus.Register(
		events.EventTypeNotificationRequested,
		common.WithIdempotency(s.HandleRequested, s.tracker, notificationKey, "NotificationRequested", s.logger),
	)
}

func notificationKey(e events.Event) string {
	nr, ok := e.(*events.NotificationRequested)
	if !ok || nr.Notification.ID == uuid.Nil {
		return ""
	}
	return "notification:" + nr.Notification.ID.String()
}

// HandleRequested persists one queued notification. A redelivered event
// whose notification already exists succeeds without writing.
func (s *Service) HandleRequested(ctx context.Context, e events.Event) error {
	log := s.logger.With("handler", "NotificationRequested", "event_type", e.Type())
	nr, ok := e.(*events.NotificationRequested)
	if !ok {
		log.Error("❌ Unexpected event type", "event", e)
		return fmt.Errorf("notification consumer: unexpected event %T", e)
	}
	n := nr.Notification
	log = log.With("notificationID", n.ID, "userID", n.UserID)

	err := s.uow.NotificationRepository().Create(ctx, &n)
	if errors.Is(err, domain.ErrAlreadyExists) {
		log.Info("🔁 [SKIP] Notification already stored")
		return nil
	}
	if err != nil {
		log.Error("failed to store notification", "error", err)
		return err
	}
	log.Info("🔔 Notification stored")
	return nil
}

// ListMine returns the caller's newest notifications first.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	return s.uow.NotificationRepository().ListByUser(ctx, userID, DefaultListLimit)
}
