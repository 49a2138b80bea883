package cache

import (
	"fmt"
	"log/slog"

	"github.com/amirasaad/studentrelief/pkg/cache"
	"github.com/amirasaad/studentrelief/pkg/config"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// New builds the campaign cache selected by CACHE_DRIVER.
func New(cfg *config.App, logger *slog.Logger) (cache.CampaignCache, error) {
	driver := DriverMemory
	if cfg.Cache != nil && cfg.Cache.Driver != "" {
		driver = cfg.Cache.Driver
	}
	switch driver {
	case DriverMemory:
		return NewMemoryCache(), nil
	case DriverRedis:
		c, err := NewRedisCampaignCache(cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", driver)
	}
}

var (
	_ cache.CampaignCache = (*MemoryCache)(nil)
	_ cache.CampaignCache = (*RedisCampaignCache)(nil)
)
