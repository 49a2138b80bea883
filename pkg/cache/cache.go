package cache

import (
	"context"
	"time"

	"github.com/amirasaad/studentrelief/pkg/domain"
)

// CampaignCache holds the public list of active campaigns.
// A miss is reported with ok=false and a nil error.
type CampaignCache interface {
	GetActive(ctx context.Context) (campaigns []*domain.GroupCampaign, ok bool, err error)
	SetActive(ctx context.Context, campaigns []*domain.GroupCampaign, ttl time.Duration) error
	// InvalidateActive drops the cached list after totals or activity change.
	InvalidateActive(ctx context.Context) error
}
