package repository

import (
	"context"
	"time"

	"github.com/amirasaad/studentrelief/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a new gorm-backed webhook ledger.
func NewWebhookEventRepository(db *gorm.DB) repository.WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

// Record inserts (provider, eventID) and reports false when the pair was
// already present. Run it in the same transaction as the event's side effects.
func (r *webhookEventRepository) Record(ctx context.Context, provider, eventID, eventType string) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}, {Name: "event_id"}},
			DoNothing: true,
		}).
		Create(&WebhookEvent{
			ID:         uuid.New(),
			Provider:   provider,
			EventID:    eventID,
			EventType:  eventType,
			ReceivedAt: time.Now().UTC(),
		})
	if res.Error != nil {
		return false, MapGormErrorToDomain(res.Error)
	}
	return res.RowsAffected == 1, nil
}
