// Package donation handles donation intake and payer setup. It never moves a
// donation out of PENDING; only the payment webhook does.
package donation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/provider/payment"
	"github.com/amirasaad/studentrelief/pkg/repository"
	"github.com/google/uuid"
)

const defaultCurrency = "usd"

// Service creates donations against the payment gateway.
type Service struct {
	uow      repository.UnitOfWork
	gateway  payment.Gateway
	currency string
	logger   *slog.Logger
	now      func() time.Time
}

func New(uow repository.UnitOfWork, gateway payment.Gateway, currency string, logger *slog.Logger) *Service {
	if currency == "" {
		currency = defaultCurrency
	}
	return &Service{
		uow:      uow,
		gateway:  gateway,
		currency: currency,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateResult is what the client needs to confirm the payment.
type CreateResult struct {
	DonationID   uuid.UUID `json:"donationId"`
	ClientSecret string    `json:"clientSecret"`
}

// SetupResult lets the client save a card for later donations.
type SetupResult struct {
	ClientSecret string `json:"clientSecret"`
	CustomerID   string `json:"customerId"`
}

// Create validates the request, makes sure the payer exists at the gateway,
// opens a payment intent and records the donation as PENDING.
func (s *Service) Create(ctx context.Context, id domain.Identity, req domain.DonationRequest) (*CreateResult, error) {
	log := s.logger.With("handler", "CreateDonation", "userID", id.UserID, "type", req.Type)

	req, err := req.Normalize()
	if err != nil {
		log.Warn("invalid donation request", "error", err)
		return nil, err
	}

	donor, err := s.donorProfile(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req); err != nil {
		log.Warn("donation target not eligible", "error", err)
		return nil, err
	}

	customerID, err := s.ensureCustomer(ctx, id, donor)
	if err != nil {
		return nil, err
	}

	pi, err := s.gateway.CreatePaymentIntent(ctx, &payment.CreatePaymentIntentParams{
		AmountCents: domain.ToCents(req.Amount),
		Currency:    s.currency,
		CustomerID:  customerID,
		Metadata:    intentMetadata(id.UserID, donor.ID, req),
	})
	if err != nil {
		log.Error("failed to create payment intent", "error", err)
		return nil, err
	}

	d := domain.NewDonation(donor.ID, req, pi.ID)
	if err := s.uow.DonationRepository().Create(ctx, d); err != nil {
		log.Error("failed to persist donation", "payment_intent_id", pi.ID, "error", err)
		return nil, fmt.Errorf("persist donation: %w", err)
	}

	log.Info("💸 Donation created", "donationID", d.ID, "payment_intent_id", pi.ID, "amount", req.Amount)
	return &CreateResult{DonationID: d.ID, ClientSecret: pi.ClientSecret}, nil
}

// SetupPaymentMethod opens a card SetupIntent for the caller's payer record.
func (s *Service) SetupPaymentMethod(ctx context.Context, id domain.Identity) (*SetupResult, error) {
	log := s.logger.With("handler", "SetupPaymentMethod", "userID", id.UserID)

	donor, err := s.donorProfile(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	customerID, err := s.ensureCustomer(ctx, id, donor)
	if err != nil {
		return nil, err
	}
	si, err := s.gateway.CreateSetupIntent(ctx, customerID)
	if err != nil {
		log.Error("failed to create setup intent", "error", err)
		return nil, err
	}
	return &SetupResult{ClientSecret: si.ClientSecret, CustomerID: customerID}, nil
}

// ListMine returns the caller's donations, newest first.
func (s *Service) ListMine(ctx context.Context, id domain.Identity) ([]*domain.Donation, error) {
	donor, err := s.donorProfile(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	return s.uow.DonationRepository().ListByDonor(ctx, donor.ID)
}

func (s *Service) donorProfile(ctx context.Context, userID uuid.UUID) (*domain.DonorProfile, error) {
	donor, err := s.uow.DonorRepository().GetByUserID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrDonorProfileRequired
	}
	if err != nil {
		return nil, fmt.Errorf("load donor profile: %w", err)
	}
	return donor, nil
}

func (s *Service) checkReferences(ctx context.Context, req domain.DonationRequest) error {
	switch req.Type {
	case domain.DonationTypeIndividualStudent:
		student, err := s.uow.StudentRepository().Get(ctx, *req.StudentID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrStudentNotEligible
		}
		if err != nil {
			return fmt.Errorf("load student: %w", err)
		}
		if !student.IsVerified() {
			return domain.ErrStudentNotEligible
		}
	case domain.DonationTypeGroupCampaign:
		campaign, err := s.uow.CampaignRepository().Get(ctx, *req.GroupCampaignID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrCampaignNotEligible
		}
		if err != nil {
			return fmt.Errorf("load campaign: %w", err)
		}
		if !campaign.AcceptsDonations(s.now()) {
			return domain.ErrCampaignNotEligible
		}
	}
	return nil
}

// ensureCustomer returns the donor's gateway customer id, creating it on first
// use. The id is stored only if none is stored yet; a loser of a concurrent
// race adopts the winner's id.
func (s *Service) ensureCustomer(ctx context.Context, id domain.Identity, donor *domain.DonorProfile) (string, error) {
	if donor.StripeCustomerID != nil && *donor.StripeCustomerID != "" {
		return *donor.StripeCustomerID, nil
	}
	log := s.logger.With("handler", "ensureCustomer", "donorID", donor.ID)

	customerID, err := s.gateway.CreateCustomer(ctx, &payment.CreateCustomerParams{
		Email:    id.Email,
		Name:     donor.FullName(),
		Metadata: map[string]string{payment.MetadataUserID: id.UserID.String()},
	})
	if err != nil {
		log.Error("failed to create customer", "error", err)
		return "", err
	}

	stored, err := s.uow.DonorRepository().SetCustomerIDIfEmpty(ctx, donor.ID, customerID)
	if err != nil {
		return "", fmt.Errorf("store customer id: %w", err)
	}
	if stored {
		donor.StripeCustomerID = &customerID
		return customerID, nil
	}

	current, err := s.uow.DonorRepository().GetByUserID(ctx, donor.UserID)
	if err != nil {
		return "", fmt.Errorf("reload donor profile: %w", err)
	}
	if current.StripeCustomerID == nil {
		return "", fmt.Errorf("donor %s has no customer id after conditional update", donor.ID)
	}
	log.Warn("customer id already stored by a concurrent request",
		"orphaned_customer_id", customerID,
		"customer_id", *current.StripeCustomerID,
	)
	donor.StripeCustomerID = current.StripeCustomerID
	return *current.StripeCustomerID, nil
}

func intentMetadata(userID, donorID uuid.UUID, req domain.DonationRequest) map[string]string {
	md := map[string]string{
		payment.MetadataDonorID: donorID.String(),
		payment.MetadataUserID:  userID.String(),
		payment.MetadataType:    string(req.Type),
	}
	if req.StudentID != nil {
		md[payment.MetadataStudentID] = req.StudentID.String()
	}
	if req.GroupCampaignID != nil {
		md[payment.MetadataGroupCampaignID] = req.GroupCampaignID.String()
	}
	return md
}
