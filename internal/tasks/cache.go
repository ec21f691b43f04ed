package tasks

import (
	"context"
	"time"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/services"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultDetailCacheSize = 64
	defaultDetailCacheTTL  = 2 * time.Minute
)

// ResourceCache keeps recently opened resource details for a short time.
type ResourceCache struct {
	catalog services.Catalog
	lru     *expirable.LRU[int, models.Resource]
}

// NewResourceCache creates a cache of at most size entries living for ttl.
func NewResourceCache(catalog services.Catalog, size int, ttl time.Duration) *ResourceCache {
	if size <= 0 {
		size = defaultDetailCacheSize
	}
	if ttl <= 0 {
		ttl = defaultDetailCacheTTL
	}
	return &ResourceCache{catalog: catalog, lru: expirable.NewLRU[int, models.Resource](size, nil, ttl)}
}

// Get returns resource id, fetching it on a miss.
func (c *ResourceCache) Get(ctx context.Context, id int) (*models.Resource, error) {
	if r, ok := c.lru.Get(id); ok {
		return &r, nil
	}
	r, err := c.catalog.GetResource(ctx, id)
	if err != nil {
		return nil, err
	}
	c.lru.Add(id, *r)
	return r, nil
}

// Peek returns a cached resource without fetching it.
func (c *ResourceCache) Peek(id int) (models.Resource, bool) { return c.lru.Peek(id) }

// Invalidate drops resource id, after a like or a delete.
func (c *ResourceCache) Invalidate(id int) { c.lru.Remove(id) }

// Len is the number of live entries.
func (c *ResourceCache) Len() int { return c.lru.Len() }
