package cache

import (
	"context"
	"sync"
	"time"

	"github.com/amirasaad/studentrelief/pkg/domain"
)

// MemoryCache implements CampaignCache in process memory.
type MemoryCache struct {
	mu        sync.RWMutex
	active    []*domain.GroupCampaign
	expiresAt time.Time
	now       func() time.Time
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{now: time.Now}
}

func (c *MemoryCache) GetActive(context.Context) ([]*domain.GroupCampaign, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.active == nil || !c.now().Before(c.expiresAt) {
		return nil, false, nil
	}
	return c.active, true, nil
}

func (c *MemoryCache) SetActive(_ context.Context, campaigns []*domain.GroupCampaign, ttl time.Duration) error {
	if campaigns == nil {
		campaigns = []*domain.GroupCampaign{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = campaigns
	c.expiresAt = c.now().Add(ttl)
	return nil
}

func (c *MemoryCache) InvalidateActive(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = nil
	return nil
}
