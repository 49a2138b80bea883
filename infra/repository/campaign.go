package repository

import (
	"context"
	"time"

	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type campaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository creates a new gorm-backed group campaign repository.
func NewCampaignRepository(db *gorm.DB) repository.CampaignRepository {
	return &campaignRepository{db: db}
}

// Create inserts the campaign together with its members.
func (r *campaignRepository) Create(ctx context.Context, c *domain.GroupCampaign) error {
	return wrapOp("create campaign", func() error {
		return r.db.WithContext(ctx).Create(mapCampaignToModel(c)).Error
	})
}

func (r *campaignRepository) Get(ctx context.Context, id uuid.UUID) (*domain.GroupCampaign, error) {
	var m GroupCampaign
	if err := r.db.WithContext(ctx).
		Preload("Members").
		Where("id = ?", id).
		First(&m).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapCampaignToDomain(&m), nil
}

func (r *campaignRepository) ListActive(ctx context.Context, now time.Time) ([]*domain.GroupCampaign, error) {
	var ms []GroupCampaign
	if err := r.db.WithContext(ctx).
		Preload("Members").
		Where("is_active = ? AND (end_date IS NULL OR end_date > ?)", true, now).
		Order("start_date DESC").
		Find(&ms).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*domain.GroupCampaign, 0, len(ms))
	for i := range ms {
		out = append(out, mapCampaignToDomain(&ms[i]))
	}
	return out, nil
}

func (r *campaignRepository) IncrementCurrentAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&GroupCampaign{}).
		Where("id = ?", id).
		UpdateColumn("current_amount", gorm.Expr("current_amount + ?", amount))
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *campaignRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&GroupCampaign{}).
		Where("is_active = ? AND end_date IS NOT NULL AND end_date < ?", true, now).
		Updates(map[string]any{"is_active": false, "updated_at": now})
	if res.Error != nil {
		return 0, MapGormErrorToDomain(res.Error)
	}
	return res.RowsAffected, nil
}

func mapCampaignToModel(c *domain.GroupCampaign) *GroupCampaign {
	m := &GroupCampaign{
		ID:              c.ID,
		Name:            c.Name,
		Description:     c.Description,
		TargetAmount:    c.TargetAmount,
		CurrentAmount:   c.CurrentAmount,
		IsActive:        c.IsActive,
		IsTaxDeductible: c.IsTaxDeductible,
		StartDate:       c.StartDate,
		EndDate:         c.EndDate,
		CreatedAt:       c.CreatedAt,
	}
	for _, mem := range c.Members {
		m.Members = append(m.Members, CampaignMember{
			CampaignID:        c.ID,
			StudentID:         mem.StudentID,
			AllocationPercent: mem.AllocationPercent,
		})
	}
	return m
}

func mapCampaignToDomain(m *GroupCampaign) *domain.GroupCampaign {
	c := &domain.GroupCampaign{
		ID:              m.ID,
		Name:            m.Name,
		Description:     m.Description,
		TargetAmount:    m.TargetAmount,
		CurrentAmount:   m.CurrentAmount,
		IsActive:        m.IsActive,
		IsTaxDeductible: m.IsTaxDeductible,
		StartDate:       m.StartDate,
		EndDate:         m.EndDate,
		CreatedAt:       m.CreatedAt,
	}
	for _, mem := range m.Members {
		c.Members = append(c.Members, domain.CampaignMember{
			CampaignID:        mem.CampaignID,
			StudentID:         mem.StudentID,
			AllocationPercent: mem.AllocationPercent,
		})
	}
	return c
}
