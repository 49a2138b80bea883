package repository

import (
	"context"

	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type adminActionRepository struct {
	db *gorm.DB
}

// NewAdminActionRepository creates a new gorm-backed audit log repository.
func NewAdminActionRepository(db *gorm.DB) repository.AdminActionRepository {
	return &adminActionRepository{db: db}
}

func (r *adminActionRepository) Create(ctx context.Context, a *domain.AdminAction) error {
	return wrapOp("record admin action", func() error {
		return r.db.WithContext(ctx).Create(&AdminAction{
			ID:         a.ID,
			AdminID:    a.AdminID,
			Action:     a.Action,
			TargetType: a.TargetType,
			TargetID:   a.TargetID,
			Notes:      a.Notes,
			Metadata:   JSONMap(a.Metadata),
			CreatedAt:  a.CreatedAt,
		}).Error
	})
}

func (r *adminActionRepository) ListByTarget(ctx context.Context, targetType string, targetID uuid.UUID) ([]*domain.AdminAction, error) {
	var ms []AdminAction
	if err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at").
		Find(&ms).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*domain.AdminAction, 0, len(ms))
	for _, m := range ms {
		out = append(out, &domain.AdminAction{
			ID:         m.ID,
			AdminID:    m.AdminID,
			Action:     m.Action,
			TargetType: m.TargetType,
			TargetID:   m.TargetID,
			Notes:      m.Notes,
			Metadata:   m.Metadata,
			CreatedAt:  m.CreatedAt,
		})
	}
	return out, nil
}
