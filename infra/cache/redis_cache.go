package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/redis/go-redis/v9"
)

const activeCampaignsKey = "campaigns:active"

// RedisCampaignCache implements CampaignCache using Redis so every API
// instance shares one listing.
type RedisCampaignCache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisCampaignCache connects to the configured Redis URL.
func NewRedisCampaignCache(cfg *config.Redis, logger *slog.Logger) (*RedisCampaignCache, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errors.New("redis cache: REDIS_URL is not set")
	}
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis cache: invalid url: %w", err)
	}
	opt.PoolSize = cfg.PoolSize
	opt.DialTimeout = cfg.DialTimeout
	opt.ReadTimeout = cfg.ReadTimeout
	opt.WriteTimeout = cfg.WriteTimeout

	prefix := cfg.KeyPrefix
	if prefix != "" {
		prefix += ":"
	}
	return NewRedisCampaignCacheWithClient(redis.NewClient(opt), prefix, logger), nil
}

// NewRedisCampaignCacheWithClient wraps an existing client.
func NewRedisCampaignCacheWithClient(
	client *redis.Client,
	prefix string,
	logger *slog.Logger,
) *RedisCampaignCache {
	return &RedisCampaignCache{client: client, prefix: prefix, logger: logger}
}

func (r *RedisCampaignCache) key(key string) string {
	return r.prefix + key
}

func (r *RedisCampaignCache) GetActive(ctx context.Context) ([]*domain.GroupCampaign, bool, error) {
	val, err := r.client.Get(ctx, r.key(activeCampaignsKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("Redis cache miss", "key", activeCampaignsKey)
		return nil, false, nil
	}
	if err != nil {
		r.logger.Error("Redis cache get error", "key", activeCampaignsKey, "error", err)
		return nil, false, err
	}
	var campaigns []*domain.GroupCampaign
	if err := json.Unmarshal(val, &campaigns); err != nil {
		r.logger.Error("Redis cache unmarshal error", "key", activeCampaignsKey, "error", err)
		return nil, false, err
	}
	r.logger.Debug("Redis cache hit", "key", activeCampaignsKey, "count", len(campaigns))
	return campaigns, true, nil
}

func (r *RedisCampaignCache) SetActive(
	ctx context.Context,
	campaigns []*domain.GroupCampaign,
	ttl time.Duration,
) error {
	if campaigns == nil {
		campaigns = []*domain.GroupCampaign{}
	}
	data, err := json.Marshal(campaigns)
	if err != nil {
		r.logger.Error("Redis cache marshal error", "key", activeCampaignsKey, "error", err)
		return err
	}
	if err := r.client.Set(ctx, r.key(activeCampaignsKey), data, ttl).Err(); err != nil {
		r.logger.Error("Redis cache set error", "key", activeCampaignsKey, "error", err)
		return err
	}
	r.logger.Debug("Redis cache set", "key", activeCampaignsKey, "count", len(campaigns), "ttl", ttl)
	return nil
}

func (r *RedisCampaignCache) InvalidateActive(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key(activeCampaignsKey)).Err(); err != nil {
		r.logger.Error("Redis cache delete error", "key", activeCampaignsKey, "error", err)
		return err
	}
	r.logger.Debug("Redis cache delete", "key", activeCampaignsKey)
	return nil
}

// Close releases the Redis connection pool.
func (r *RedisCampaignCache) Close() error {
	return r.client.Close()
}
