package repository

import (
	"context"

	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type donorRepository struct {
	db *gorm.DB
}

// NewDonorRepository creates a new gorm-backed donor profile repository.
func NewDonorRepository(db *gorm.DB) repository.DonorRepository {
	return &donorRepository{db: db}
}

func (r *donorRepository) Create(ctx context.Context, p *domain.DonorProfile) error {
	return wrapOp("create donor profile", func() error {
		return r.db.WithContext(ctx).Create(mapDonorToModel(p)).Error
	})
}

func (r *donorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.DonorProfile, error) {
	var m DonorProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapDonorToDomain(&m), nil
}

func (r *donorRepository) SetCustomerIDIfEmpty(ctx context.Context, id uuid.UUID, customerID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&DonorProfile{}).
		Where("id = ? AND stripe_customer_id IS NULL", id).
		Update("stripe_customer_id", customerID)
	if res.Error != nil {
		return false, MapGormErrorToDomain(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func mapDonorToModel(p *domain.DonorProfile) *DonorProfile {
	return &DonorProfile{
		ID:               p.ID,
		UserID:           p.UserID,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Company:          p.Company,
		Phone:            p.Phone,
		IsAnonymous:      p.IsAnonymous,
		StripeCustomerID: p.StripeCustomerID,
		CreatedAt:        p.CreatedAt,
	}
}

func mapDonorToDomain(m *DonorProfile) *domain.DonorProfile {
	return &domain.DonorProfile{
		ID:               m.ID,
		UserID:           m.UserID,
		FirstName:        m.FirstName,
		LastName:         m.LastName,
		Company:          m.Company,
		Phone:            m.Phone,
		IsAnonymous:      m.IsAnonymous,
		StripeCustomerID: m.StripeCustomerID,
		CreatedAt:        m.CreatedAt,
	}
}
