// Package campaign serves the public campaign listing and keeps campaign
// activity current.
package campaign

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/studentrelief/pkg/cache"
	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/domain/events"
	"github.com/amirasaad/studentrelief/pkg/eventbus"
	"github.com/amirasaad/studentrelief/pkg/repository"
	"github.com/google/uuid"
)

type Service struct {
	uow    repository.UnitOfWork
	cache  cache.CampaignCache
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// New builds the campaign service. A nil cache or a non-positive ttl disables caching.
func New(uow repository.UnitOfWork, c cache.CampaignCache, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{uow: uow, cache: c, ttl: ttl, logger: logger, now: time.Now}
}

func (s *Service) cacheEnabled() bool {
	return s.cache != nil && s.ttl > 0
}

// ListActive returns campaigns open for donations. Cache failures fall back
// to the database.
func (s *Service) ListActive(ctx context.Context) ([]*domain.GroupCampaign, error) {
	log := s.logger.With("handler", "ListActiveCampaigns")
	if s.cacheEnabled() {
		list, ok, err := s.cache.GetActive(ctx)
		if err != nil {
			log.Warn("⚠️ Campaign cache read failed", "error", err)
		} else if ok {
			return list, nil
		}
	}

	list, err := s.uow.CampaignRepository().ListActive(ctx, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("list active campaigns: %w", err)
	}
	if s.cacheEnabled() {
		if err := s.cache.SetActive(ctx, list, s.ttl); err != nil {
			log.Warn("⚠️ Campaign cache write failed", "error", err)
		}
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.GroupCampaign, error) {
	return s.uow.CampaignRepository().Get(ctx, id)
}

// ExpireCampaigns deactivates campaigns whose end date has passed.
func (s *Service) ExpireCampaigns(ctx context.Context) (int64, error) {
	log := s.logger.With("handler", "ExpireCampaigns")
	n, err := s.uow.CampaignRepository().DeactivateExpired(ctx, s.now().UTC())
	if err != nil {
		log.Error("failed to expire campaigns", "error", err)
		return 0, err
	}
	if n > 0 {
		s.invalidate(ctx, log)
		log.Info("⏰ Campaigns expired", "count", n)
	}
	return n, nil
}

// Register subscribes the service to DonationCompleted so cached totals stay fresh.
func (s *Service) Register(bus eventbus.Bus) {
	bus.Register(events.EventTypeDonationCompleted, s.HandleDonationCompleted)
}

func (s *Service) HandleDonationCompleted(ctx context.Context, e events.Event) error {
	dc, ok := e.(*events.DonationCompleted)
	if !ok {
		return fmt.Errorf("campaign: unexpected event %T", e)
	}
	if dc.Donation.GroupCampaignID == nil {
		return nil
	}
	s.invalidate(ctx, s.logger.With("handler", "DonationCompleted", "campaignID", *dc.Donation.GroupCampaignID))
	return nil
}

func (s *Service) invalidate(ctx context.Context, log *slog.Logger) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateActive(ctx); err != nil {
		log.Warn("⚠️ Campaign cache invalidation failed", "error", err)
	}
}
