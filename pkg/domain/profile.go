package domain

import (
	"time"

	"github.com/google/uuid"
)

// DonorProfile is the payer record; StripeCustomerID is filled lazily on first use.
type DonorProfile struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"userId"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Company          *string   `json:"company,omitempty"`
	Phone            *string   `json:"phone,omitempty"`
	IsAnonymous      bool      `json:"isAnonymous"`
	StripeCustomerID *string   `json:"stripeCustomerId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// FullName joins first and last name.
func (d *DonorProfile) FullName() string {
	return d.FirstName + " " + d.LastName
}
