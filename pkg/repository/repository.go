package repository

import (
	"context"
	"time"

	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRepository stores the local mirror of identity-provider users.
type UserRepository interface {
	// Upsert inserts the user or updates email, name and role of an existing one.
	Upsert(ctx context.Context, user *domain.User) error
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// ListIDsByRole returns the ids of every user holding role.
	ListIDsByRole(ctx context.Context, role domain.Role) ([]uuid.UUID, error)
}

// DonorRepository stores payer records.
type DonorRepository interface {
	Create(ctx context.Context, profile *domain.DonorProfile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.DonorProfile, error)
	// SetCustomerIDIfEmpty stores customerID only when the profile has none yet.
	// It reports whether this call stored it.
	SetCustomerIDIfEmpty(ctx context.Context, id uuid.UUID, customerID string) (bool, error)
}

// StudentRepository stores student profiles and their verification state.
type StudentRepository interface {
	Create(ctx context.Context, profile *domain.StudentProfile) error
	Get(ctx context.Context, id uuid.UUID) (*domain.StudentProfile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.StudentProfile, error)
	UpdateVerification(ctx context.Context, profile *domain.StudentProfile) error
	ListByStatus(ctx context.Context, status domain.VerificationStatus) ([]*domain.StudentProfile, error)
}

// CampaignRepository stores group campaigns and their running totals.
type CampaignRepository interface {
	Create(ctx context.Context, campaign *domain.GroupCampaign) error
	Get(ctx context.Context, id uuid.UUID) (*domain.GroupCampaign, error)
	ListActive(ctx context.Context, now time.Time) ([]*domain.GroupCampaign, error)
	// IncrementCurrentAmount adds amount to the campaign total in a single statement.
	IncrementCurrentAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	// DeactivateExpired flips is_active off for campaigns whose end date is before now.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// DonationRepository stores donations. Status changes are conditional on the
// current status so concurrent or repeated webhook deliveries cannot apply twice.
type DonationRepository interface {
	Create(ctx context.Context, donation *domain.Donation) error
	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*domain.Donation, error)
	// MarkCompleted moves a PENDING donation to COMPLETED and reports whether a row changed.
	MarkCompleted(ctx context.Context, paymentIntentID string, chargeID *string, at time.Time) (bool, error)
	// MarkFailed moves every PENDING donation for the intent to FAILED.
	MarkFailed(ctx context.Context, paymentIntentID string) (int64, error)
	ListByDonor(ctx context.Context, donorID uuid.UUID) ([]*domain.Donation, error)
	// ListUnsettledBefore returns donations created before `before` that are
	// still PENDING, plus FAILED ones created since failedSince. The gateway
	// can still settle a failed intent when the donor retries it.
	ListUnsettledBefore(ctx context.Context, before, failedSince time.Time, limit int) ([]*domain.Donation, error)
	SumCompletedForCampaign(ctx context.Context, campaignID uuid.UUID) (decimal.Decimal, error)
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*domain.Document, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Notification, error)
}

type AdminActionRepository interface {
	Create(ctx context.Context, action *domain.AdminAction) error
	ListByTarget(ctx context.Context, targetType string, targetID uuid.UUID) ([]*domain.AdminAction, error)
}

// WebhookEventRepository is the ledger of processed gateway events.
type WebhookEventRepository interface {
	// Record inserts the event and reports false when it was already recorded.
	Record(ctx context.Context, provider, eventID, eventType string) (bool, error)
}
