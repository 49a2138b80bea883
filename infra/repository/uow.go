package repository

import (
	"context"

	"github.com/amirasaad/studentrelief/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides transaction boundary and repository access in one abstraction.
// Repositories handed out inside Do share the transaction's session.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs the given function in a transaction boundary, providing a UoW with repository access.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UoW) UserRepository() repository.UserRepository {
	return NewUserRepository(u.session())
}

func (u *UoW) DonorRepository() repository.DonorRepository {
	return NewDonorRepository(u.session())
}

func (u *UoW) StudentRepository() repository.StudentRepository {
	return NewStudentRepository(u.session())
}

func (u *UoW) CampaignRepository() repository.CampaignRepository {
	return NewCampaignRepository(u.session())
}

func (u *UoW) DonationRepository() repository.DonationRepository {
	return NewDonationRepository(u.session())
}

func (u *UoW) DocumentRepository() repository.DocumentRepository {
	return NewDocumentRepository(u.session())
}

func (u *UoW) NotificationRepository() repository.NotificationRepository {
	return NewNotificationRepository(u.session())
}

func (u *UoW) AdminActionRepository() repository.AdminActionRepository {
	return NewAdminActionRepository(u.session())
}

func (u *UoW) WebhookEventRepository() repository.WebhookEventRepository {
	return NewWebhookEventRepository(u.session())
}
