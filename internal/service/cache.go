package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"railtrace/internal/model"

	"github.com/go-redis/redis/v8"
)

const (
	componentCachePrefix = "component:"
	componentCacheTTL    = 5 * time.Minute
)

// ComponentCache fronts component-detail reads on the QR-scan path. All
// methods are no-ops when redis is not configured.
type ComponentCache struct {
	redis *redis.Client
}

func NewComponentCache(redisClient *redis.Client) *ComponentCache {
	return &ComponentCache{redis: redisClient}
}

func componentCacheKey(componentID string) string {
	return fmt.Sprintf("%s%s", componentCachePrefix, componentID)
}

// Get returns the cached component, or nil on miss
func (c *ComponentCache) Get(ctx context.Context, componentID string) *model.Component {
	if c.redis == nil {
		return nil
	}

	data, err := c.redis.Get(ctx, componentCacheKey(componentID)).Bytes()
	if err != nil {
		return nil
	}

	var component model.Component
	if err := json.Unmarshal(data, &component); err != nil {
		return nil
	}
	return &component
}

// Set stores a component snapshot with a short TTL
func (c *ComponentCache) Set(ctx context.Context, component *model.Component) {
	if c.redis == nil {
		return
	}

	data, err := json.Marshal(component)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, componentCacheKey(component.ComponentID), data, componentCacheTTL).Err()
}

// Invalidate drops the cached snapshots for the given component ids
func (c *ComponentCache) Invalidate(ctx context.Context, componentIDs ...string) {
	if c.redis == nil {
		return
	}

	for _, id := range componentIDs {
		_ = c.redis.Del(ctx, componentCacheKey(id)).Err()
	}
}
