package memory_cache

import (
	"context"
	"listing-organizer/internal/core/domain"
	"listing-organizer/internal/core/port"
	"sync"
)

type propertyKey struct {
	ownerID    string
	propertyID string
}

// PropertyCache - кэш объектов в памяти, когда DATABASE_URL не задан.
type PropertyCache struct {
	mu    sync.RWMutex
	items map[propertyKey]domain.Property
}

var _ port.PropertyCachePort = (*PropertyCache)(nil)

func NewPropertyCache() *PropertyCache {
	return &PropertyCache{items: make(map[propertyKey]domain.Property)}
}

func (c *PropertyCache) Get(ctx context.Context, ownerID, propertyID string) (*domain.Property, error) {
	c.mu.RLock()
	p, ok := c.items[propertyKey{ownerID, propertyID}]
	c.mu.RUnlock()
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	clone := p.Clone()
	return &clone, nil
}

func (c *PropertyCache) Put(ctx context.Context, ownerID string, property domain.Property) error {
	c.mu.Lock()
	c.items[propertyKey{ownerID, property.ID}] = property.Clone()
	c.mu.Unlock()
	return nil
}

func (c *PropertyCache) Delete(ctx context.Context, ownerID, propertyID string) error {
	c.mu.Lock()
	delete(c.items, propertyKey{ownerID, propertyID})
	c.mu.Unlock()
	return nil
}
