package repository

import (
	"context"
)

// UnitOfWork defines the transaction boundary and repository access in one abstraction.
//
// Do executes fn within a transaction; the UnitOfWork passed to fn hands out
// repositories bound to that transaction. If fn returns an error the
// transaction is rolled back. Outside of Do the repositories run on the base
// session without a transaction.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	UserRepository() UserRepository
	DonorRepository() DonorRepository
	StudentRepository() StudentRepository
	CampaignRepository() CampaignRepository
	DonationRepository() DonationRepository
	DocumentRepository() DocumentRepository
	NotificationRepository() NotificationRepository
	AdminActionRepository() AdminActionRepository
	WebhookEventRepository() WebhookEventRepository
}
