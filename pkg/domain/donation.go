package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DonationType string

const (
	DonationTypeGeneralFund       DonationType = "GENERAL_FUND"
	DonationTypeIndividualStudent DonationType = "INDIVIDUAL_STUDENT"
	DonationTypeGroupCampaign     DonationType = "GROUP_CAMPAIGN"
)

// Valid reports whether t is one of the supported donation types.
func (t DonationType) Valid() bool {
	switch t {
	case DonationTypeGeneralFund, DonationTypeIndividualStudent, DonationTypeGroupCampaign:
		return true
	}
	return false
}

type DonationStatus string

const (
	DonationPending   DonationStatus = "PENDING"
	DonationCompleted DonationStatus = "COMPLETED"
	DonationFailed    DonationStatus = "FAILED"
)

// Platform donation bounds in USD, inclusive.
var (
	MinDonationAmount = decimal.NewFromInt(1)
	MaxDonationAmount = decimal.NewFromInt(10000)
)

// Donation is the audit record of a single donor payment.
// It is created PENDING and only the payment webhook moves it to COMPLETED or FAILED.
type Donation struct {
	ID              uuid.UUID       `json:"id"`
	DonorID         uuid.UUID       `json:"donorId"`
	StudentID       *uuid.UUID      `json:"studentId,omitempty"`
	GroupCampaignID *uuid.UUID      `json:"groupCampaignId,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Type            DonationType    `json:"type"`
	IsAnonymous     bool            `json:"isAnonymous"`
	Message         *string         `json:"message,omitempty"`
	PaymentIntentID string          `json:"paymentIntentId"`
	ChargeID        *string         `json:"chargeId,omitempty"`
	Status          DonationStatus  `json:"status"`
	ProcessedAt     *time.Time      `json:"processedAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// DonationRequest is the donor-supplied part of a donation.
type DonationRequest struct {
	Amount          decimal.Decimal
	Type            DonationType
	StudentID       *uuid.UUID
	GroupCampaignID *uuid.UUID
	IsAnonymous     bool
	Message         *string
}

// Normalize validates the request and drops references that do not belong to
// its type, so a GENERAL_FUND donation can never touch a campaign total.
func (r DonationRequest) Normalize() (DonationRequest, error) {
	if r.Amount.LessThan(MinDonationAmount) || r.Amount.GreaterThan(MaxDonationAmount) {
		return r, fmt.Errorf("%w: must be between %s and %s", ErrInvalidAmount, MinDonationAmount, MaxDonationAmount)
	}
	if !r.Amount.Equal(r.Amount.Round(2)) {
		return r, fmt.Errorf("%w: at most two decimal places", ErrInvalidAmount)
	}
	if !r.Type.Valid() {
		return r, ErrInvalidDonationType
	}

	switch r.Type {
	case DonationTypeIndividualStudent:
		if r.StudentID == nil {
			return r, ErrStudentRequired
		}
		r.GroupCampaignID = nil
	case DonationTypeGroupCampaign:
		if r.GroupCampaignID == nil {
			return r, ErrCampaignRequired
		}
		r.StudentID = nil
	default:
		r.StudentID = nil
		r.GroupCampaignID = nil
	}
	return r, nil
}

// NewDonation builds a PENDING donation bound to a gateway payment intent.
func NewDonation(donorID uuid.UUID, req DonationRequest, paymentIntentID string) *Donation {
	return &Donation{
		ID:              uuid.New(),
		DonorID:         donorID,
		StudentID:       req.StudentID,
		GroupCampaignID: req.GroupCampaignID,
		Amount:          req.Amount,
		Type:            req.Type,
		IsAnonymous:     req.IsAnonymous,
		Message:         req.Message,
		PaymentIntentID: paymentIntentID,
		Status:          DonationPending,
		CreatedAt:       time.Now().UTC(),
	}
}

// ToCents converts a USD amount to the gateway's minor unit.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// FormatUSD renders an amount the way user-facing copy shows it.
func FormatUSD(amount decimal.Decimal) string {
	if amount.Equal(amount.Truncate(0)) {
		return "$" + amount.StringFixed(0)
	}
	return "$" + amount.StringFixed(2)
}
