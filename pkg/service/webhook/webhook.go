// Package webhook applies verified payment gateway events to donations.
//
// Every event runs in one transaction that first records the event id in the
// processed-event ledger. A second delivery finds the ledger row and does
// nothing, and a failed attempt rolls the ledger row back with everything
// else so the gateway's redelivery is applied in full.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/domain/events"
	"github.com/amirasaad/studentrelief/pkg/eventbus"
	"github.com/amirasaad/studentrelief/pkg/handler/common"
	"github.com/amirasaad/studentrelief/pkg/provider/payment"
	"github.com/amirasaad/studentrelief/pkg/repository"
)

type Service struct {
	uow     repository.UnitOfWork
	gateway payment.Gateway
	tracker *common.IdempotencyTracker
	bus     eventbus.Bus
	logger  *slog.Logger
	now     func() time.Time
}

// New builds the webhook service. bus may be nil; it only receives
// DonationCompleted after commit.
func New(
	uow repository.UnitOfWork,
	gateway payment.Gateway,
	tracker *common.IdempotencyTracker,
	bus eventbus.Bus,
	logger *slog.Logger,
) *Service {
	if tracker == nil {
		tracker = common.NewIdempotencyTracker()
	}
	return &Service{
		uow:     uow,
		gateway: gateway,
		tracker: tracker,
		bus:     bus,
		logger:  logger,
		now:     time.Now,
	}
}

// Process verifies and applies one webhook delivery. A signature failure
// wraps domain.ErrInvalidSignature and mutates nothing. A verified event whose
// object cannot be decoded is logged and acknowledged as ignored, since every
// redelivery would fail the same way. Any other error means nothing was
// committed and the delivery should be retried.
func (s *Service) Process(ctx context.Context, payload []byte, signature string) (*payment.WebhookEvent, error) {
	evt, err := s.gateway.ParseWebhook(payload, signature)
	if errors.Is(err, domain.ErrMalformedWebhookEvent) {
		s.logger.Error("☠️ Dropping undecodable webhook event", "handler", "ProcessWebhook", "error", err)
		return &payment.WebhookEvent{Kind: payment.WebhookIgnored}, nil
	}
	if err != nil {
		return nil, err
	}

	log := s.logger.With("handler", "ProcessWebhook", "event_id", evt.ID, "type", evt.Type)
	if evt.Kind == payment.WebhookIgnored {
		log.Info("⏭️ Unhandled event type")
		return evt, nil
	}

	var completed *domain.Donation
	key := s.gateway.Name() + ":" + evt.ID
	shared, err := s.tracker.Collapse(key, func() error {
		var applyErr error
		completed, applyErr = s.apply(ctx, evt, log)
		return applyErr
	})
	if err != nil {
		log.Error("❌ Webhook processing failed", "error", err)
		return nil, err
	}
	if shared {
		log.Debug("concurrent delivery collapsed")
	}

	if completed != nil {
		s.publishCompleted(ctx, completed, log)
	}
	return evt, nil
}

func (s *Service) apply(ctx context.Context, evt *payment.WebhookEvent, log *slog.Logger) (*domain.Donation, error) {
	var completed *domain.Donation
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		recorded, err := uow.WebhookEventRepository().Record(ctx, s.gateway.Name(), evt.ID, evt.Type)
		if err != nil {
			return fmt.Errorf("record event: %w", err)
		}
		if !recorded {
			log.Info("🔁 [SKIP] Event already processed")
			return nil
		}

		switch evt.Kind {
		case payment.WebhookPaymentSucceeded:
			completed, err = s.completeDonation(ctx, uow, evt, log)
			return err
		case payment.WebhookPaymentFailed:
			n, err := uow.DonationRepository().MarkFailed(ctx, evt.PaymentIntentID)
			if err != nil {
				return fmt.Errorf("mark failed: %w", err)
			}
			log.Info("❌ Donation payment failed", "payment_intent_id", evt.PaymentIntentID, "rows", n)
		case payment.WebhookAcknowledged:
			log.Info("✅ Event acknowledged")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

// completeDonation moves the donation to COMPLETED. The campaign increment and
// the student notification only happen when this call made that transition.
func (s *Service) completeDonation(
	ctx context.Context,
	uow repository.UnitOfWork,
	evt *payment.WebhookEvent,
	log *slog.Logger,
) (*domain.Donation, error) {
	log = log.With("payment_intent_id", evt.PaymentIntentID)

	d, err := uow.DonationRepository().GetByPaymentIntentID(ctx, evt.PaymentIntentID)
	if errors.Is(err, domain.ErrNotFound) {
		log.Warn("⚠️ No donation for payment intent")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load donation: %w", err)
	}

	var chargeID *string
	if evt.ChargeID != "" {
		chargeID = &evt.ChargeID
	}
	now := s.now().UTC()
	changed, err := uow.DonationRepository().MarkCompleted(ctx, evt.PaymentIntentID, chargeID, now)
	if err != nil {
		return nil, fmt.Errorf("mark completed: %w", err)
	}
	if !changed {
		log.Info("🔁 Donation already left PENDING", "status", d.Status)
		return nil, nil
	}
	d.Status = domain.DonationCompleted
	d.ChargeID = chargeID
	d.ProcessedAt = &now

	if d.GroupCampaignID != nil {
		if err := uow.CampaignRepository().IncrementCurrentAmount(ctx, *d.GroupCampaignID, d.Amount); err != nil {
			return nil, fmt.Errorf("increment campaign %s: %w", d.GroupCampaignID, err)
		}
	}
	if d.StudentID != nil {
		student, err := uow.StudentRepository().Get(ctx, *d.StudentID)
		if err != nil {
			return nil, fmt.Errorf("load student %s: %w", d.StudentID, err)
		}
		n := domain.DonationReceivedNotification(student.UserID, d)
		if err := uow.NotificationRepository().Create(ctx, n); err != nil {
			return nil, fmt.Errorf("notify student: %w", err)
		}
	}

	log.Info("💰 Donation completed", "donationID", d.ID, "amount", d.Amount)
	return d, nil
}

func (s *Service) publishCompleted(ctx context.Context, d *domain.Donation, log *slog.Logger) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Emit(ctx, &events.DonationCompleted{Donation: *d}); err != nil {
		log.Error("failed to publish donation completed", "donationID", d.ID, "error", err)
	}
}
