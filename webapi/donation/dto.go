package donation

import (
	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateDonationRequest is the body of POST /donations.
type CreateDonationRequest struct {
	Amount          decimal.Decimal `json:"amount" swaggertype:"number" example:"25.50"`
	Type            string          `json:"type" validate:"required,oneof=INDIVIDUAL_STUDENT GROUP_CAMPAIGN GENERAL_FUND" example:"GENERAL_FUND"`
	StudentID       *uuid.UUID      `json:"studentId,omitempty" swaggertype:"string"`
	GroupCampaignID *uuid.UUID      `json:"groupCampaignId,omitempty" swaggertype:"string"`
	IsAnonymous     bool            `json:"isAnonymous"`
	Message         *string         `json:"message,omitempty" validate:"omitempty,max=500"`
}

func (r CreateDonationRequest) toDomain() domain.DonationRequest {
	return domain.DonationRequest{
		Amount:          r.Amount,
		Type:            domain.DonationType(r.Type),
		StudentID:       r.StudentID,
		GroupCampaignID: r.GroupCampaignID,
		IsAnonymous:     r.IsAnonymous,
		Message:         r.Message,
	}
}
