package public

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	siteKeyPrefix = "site:" // site:{tenant_slug}:{project_slug}

	// Staleness after an unpublish or content edit is bounded by this TTL.
	defaultCacheTTL = 60 * time.Second
)

// Cache keeps published-project payloads in Redis so hot public pages skip
// the database entirely.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client, ttl: defaultCacheTTL}
}

// GetProject returns the cached payload, or (nil, nil) on a miss.
func (c *Cache) GetProject(ctx context.Context, tenantSlug, projectSlug string) (*SiteProject, error) {
	data, err := c.client.Get(ctx, c.siteKey(tenantSlug, projectSlug)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("site cache get: %w", err)
	}

	var sp SiteProject
	if err := json.Unmarshal([]byte(data), &sp); err != nil {
		return nil, fmt.Errorf("site cache unmarshal: %w", err)
	}
	return &sp, nil
}

func (c *Cache) SetProject(ctx context.Context, sp *SiteProject) error {
	data, err := json.Marshal(sp)
	if err != nil {
		return fmt.Errorf("site cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, c.siteKey(sp.TenantSlug, sp.Slug), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("site cache set: %w", err)
	}
	return nil
}

func (c *Cache) siteKey(tenantSlug, projectSlug string) string {
	return siteKeyPrefix + tenantSlug + ":" + projectSlug
}
