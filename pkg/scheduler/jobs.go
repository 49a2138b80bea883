package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/provider/payment"
	"github.com/amirasaad/studentrelief/pkg/repository"
)

// CampaignExpirer deactivates campaigns past their end date.
type CampaignExpirer interface {
	ExpireCampaigns(ctx context.Context) (int64, error)
}

// StaleDonation is a donation whose local status disagrees with the gateway:
// a PENDING one whose intent is already terminal, or a FAILED one whose
// intent later succeeded on a retry.
type StaleDonation struct {
	PaymentIntentID string
	LocalStatus     domain.DonationStatus
	GatewayStatus   payment.PaymentStatus
	Age             time.Duration
}

// failedLookback bounds how far back FAILED donations are re-checked.
const failedLookback = 7 * 24 * time.Hour

// Jobs holds the periodic maintenance tasks.
type Jobs struct {
	uow        repository.UnitOfWork
	gateway    payment.Gateway
	campaigns  CampaignExpirer
	pendingAge time.Duration
	batch      int
	timeout    time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

func NewJobs(
	uow repository.UnitOfWork,
	gateway payment.Gateway,
	campaigns CampaignExpirer,
	pendingAge time.Duration,
	batch int,
	logger *slog.Logger,
) *Jobs {
	if batch <= 0 {
		batch = 50
	}
	return &Jobs{
		uow:        uow,
		gateway:    gateway,
		campaigns:  campaigns,
		pendingAge: pendingAge,
		batch:      batch,
		timeout:    2 * time.Minute,
		logger:     logger,
		now:        time.Now,
	}
}

// ExpireCampaigns is the cron entry point for campaign expiry.
func (j *Jobs) ExpireCampaigns() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	if _, err := j.campaigns.ExpireCampaigns(ctx); err != nil {
		j.logger.Error("campaign expiry job failed", "error", err)
	}
}

// AuditStalePendingJob is the cron entry point for AuditStalePending.
func (j *Jobs) AuditStalePendingJob() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	if _, err := j.AuditStalePending(ctx); err != nil {
		j.logger.Error("pending donation audit failed", "error", err)
	}
}

// AuditStalePending reports donations older than the configured age whose
// local status disagrees with the gateway. It only logs; donation status is
// left for the webhook to change.
func (j *Jobs) AuditStalePending(ctx context.Context) ([]StaleDonation, error) {
	log := j.logger.With("handler", "AuditStalePending")
	now := j.now().UTC()

	unsettled, err := j.uow.DonationRepository().ListUnsettledBefore(ctx, now.Add(-j.pendingAge), now.Add(-failedLookback), j.batch)
	if err != nil {
		return nil, err
	}

	var stale []StaleDonation
	for _, d := range unsettled {
		pi, err := j.gateway.GetPaymentIntent(ctx, d.PaymentIntentID)
		if err != nil {
			log.Warn("⚠️ Could not retrieve payment intent", "payment_intent_id", d.PaymentIntentID, "error", err)
			continue
		}
		if !disagrees(d.Status, pi.Status) {
			continue
		}
		s := StaleDonation{
			PaymentIntentID: d.PaymentIntentID,
			LocalStatus:     d.Status,
			GatewayStatus:   pi.Status,
			Age:             now.Sub(d.CreatedAt),
		}
		stale = append(stale, s)
		msg := "🕵️ Pending donation already settled at gateway"
		if d.Status == domain.DonationFailed {
			msg = "💸 Failed donation was captured at gateway"
		}
		log.Warn(msg,
			"donationID", d.ID,
			"payment_intent_id", d.PaymentIntentID,
			"local_status", d.Status,
			"gateway_status", pi.Status,
			"age", s.Age.Round(time.Second),
		)
	}
	log.Info("✅ Donation audit finished", "checked", len(unsettled), "stale", len(stale))
	return stale, nil
}

func disagrees(local domain.DonationStatus, gateway payment.PaymentStatus) bool {
	switch local {
	case domain.DonationPending:
		return gateway.Terminal()
	case domain.DonationFailed:
		return gateway == payment.PaymentCompleted
	}
	return false
}
