package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GroupCampaign pools donations for a set of member students.
// CurrentAmount only grows, by the amount of each completed donation.
type GroupCampaign struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	TargetAmount    decimal.Decimal  `json:"targetAmount"`
	CurrentAmount   decimal.Decimal  `json:"currentAmount"`
	IsActive        bool             `json:"isActive"`
	IsTaxDeductible bool             `json:"isTaxDeductible"`
	StartDate       time.Time        `json:"startDate"`
	EndDate         *time.Time       `json:"endDate,omitempty"`
	Members         []CampaignMember `json:"members,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
}

type CampaignMember struct {
	CampaignID        uuid.UUID       `json:"campaignId"`
	StudentID         uuid.UUID       `json:"studentId"`
	AllocationPercent decimal.Decimal `json:"allocationPercent"`
}

// AcceptsDonations reports whether the campaign can receive new donations at now.
func (c *GroupCampaign) AcceptsDonations(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	return c.EndDate == nil || now.Before(*c.EndDate)
}
