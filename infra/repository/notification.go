package repository

import (
	"context"

	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new gorm-backed notification repository.
func NewNotificationRepository(db *gorm.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	return wrapOp("create notification", func() error {
		return r.db.WithContext(ctx).Create(&Notification{
			ID:        n.ID,
			UserID:    n.UserID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      string(n.Type),
			Metadata:  JSONMap(n.Metadata),
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		}).Error
	})
}

// ListByUser returns the newest notifications first. A non-positive limit returns all.
func (r *notificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Notification, error) {
	var ms []Notification
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*domain.Notification, 0, len(ms))
	for _, m := range ms {
		out = append(out, &domain.Notification{
			ID:        m.ID,
			UserID:    m.UserID,
			Title:     m.Title,
			Message:   m.Message,
			Type:      domain.NotificationType(m.Type),
			Metadata:  m.Metadata,
			IsRead:    m.IsRead,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}
