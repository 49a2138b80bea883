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

type donationRepository struct {
	db *gorm.DB
}

// NewDonationRepository creates a new gorm-backed donation repository.
func NewDonationRepository(db *gorm.DB) repository.DonationRepository {
	return &donationRepository{db: db}
}

func (r *donationRepository) Create(ctx context.Context, d *domain.Donation) error {
	return wrapOp("create donation", func() error {
		return r.db.WithContext(ctx).Create(mapDonationToModel(d)).Error
	})
}

func (r *donationRepository) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*domain.Donation, error) {
	var m Donation
	if err := r.db.WithContext(ctx).
		Where("payment_intent_id = ?", paymentIntentID).
		First(&m).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapDonationToDomain(&m), nil
}

func (r *donationRepository) MarkCompleted(
	ctx context.Context,
	paymentIntentID string,
	chargeID *string,
	at time.Time,
) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Donation{}).
		Where("payment_intent_id = ? AND status = ?", paymentIntentID, string(domain.DonationPending)).
		Updates(map[string]any{
			"status":       string(domain.DonationCompleted),
			"charge_id":    chargeID,
			"processed_at": at,
			"updated_at":   at,
		})
	if res.Error != nil {
		return false, MapGormErrorToDomain(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *donationRepository) MarkFailed(ctx context.Context, paymentIntentID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Donation{}).
		Where("payment_intent_id = ? AND status = ?", paymentIntentID, string(domain.DonationPending)).
		Updates(map[string]any{
			"status":     string(domain.DonationFailed),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, MapGormErrorToDomain(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *donationRepository) ListByDonor(ctx context.Context, donorID uuid.UUID) ([]*domain.Donation, error) {
	var ms []Donation
	if err := r.db.WithContext(ctx).
		Where("donor_id = ?", donorID).
		Order("created_at DESC").
		Find(&ms).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapDonationsToDomain(ms), nil
}

func (r *donationRepository) ListUnsettledBefore(
	ctx context.Context,
	before, failedSince time.Time,
	limit int,
) ([]*domain.Donation, error) {
	var ms []Donation
	q := r.db.WithContext(ctx).
		Where("created_at < ?", before).
		Where(r.db.Session(&gorm.Session{NewDB: true}).
			Where("status = ?", string(domain.DonationPending)).
			Or("status = ? AND created_at >= ?", string(domain.DonationFailed), failedSince)).
		Order("created_at")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapDonationsToDomain(ms), nil
}

func (r *donationRepository) SumCompletedForCampaign(ctx context.Context, campaignID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&Donation{}).
		Select("SUM(amount)").
		Where("group_campaign_id = ? AND status = ?", campaignID, string(domain.DonationCompleted)).
		Row().
		Scan(&total)
	if err != nil {
		return decimal.Zero, MapGormErrorToDomain(err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func mapDonationToModel(d *domain.Donation) *Donation {
	return &Donation{
		ID:              d.ID,
		DonorID:         d.DonorID,
		StudentID:       d.StudentID,
		GroupCampaignID: d.GroupCampaignID,
		Amount:          d.Amount,
		Type:            string(d.Type),
		IsAnonymous:     d.IsAnonymous,
		Message:         d.Message,
		PaymentIntentID: d.PaymentIntentID,
		ChargeID:        d.ChargeID,
		Status:          string(d.Status),
		ProcessedAt:     d.ProcessedAt,
		CreatedAt:       d.CreatedAt,
	}
}

func mapDonationToDomain(m *Donation) *domain.Donation {
	return &domain.Donation{
		ID:              m.ID,
		DonorID:         m.DonorID,
		StudentID:       m.StudentID,
		GroupCampaignID: m.GroupCampaignID,
		Amount:          m.Amount,
		Type:            domain.DonationType(m.Type),
		IsAnonymous:     m.IsAnonymous,
		Message:         m.Message,
		PaymentIntentID: m.PaymentIntentID,
		ChargeID:        m.ChargeID,
		Status:          domain.DonationStatus(m.Status),
		ProcessedAt:     m.ProcessedAt,
		CreatedAt:       m.CreatedAt,
	}
}

func mapDonationsToDomain(ms []Donation) []*domain.Donation {
	out := make([]*domain.Donation, 0, len(ms))
	for i := range ms {
		out = append(out, mapDonationToDomain(&ms[i]))
	}
	return out
}
