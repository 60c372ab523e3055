package memory_cache

import (
	"context"
	"listing-organizer/internal/core/domain"
	"listing-organizer/internal/core/port"
	"sync"
	"time"
)

type boardEntry struct {
	boards    domain.BoardSet
	expiresAt time.Time
}

// BoardCache - кэш досок в памяти процесса. Используется, когда Redis не настроен.
type BoardCache struct {
	mu      sync.RWMutex
	entries map[string]boardEntry
	now     func() time.Time
}

var _ port.BoardCachePort = (*BoardCache)(nil)

func NewBoardCache() *BoardCache {
	return &BoardCache{entries: make(map[string]boardEntry), now: time.Now}
}

func (c *BoardCache) Get(ctx context.Context, ownerID string) (*domain.BoardSet, error) {
	c.mu.RLock()
	entry, ok := c.entries[ownerID]
	c.mu.RUnlock()
	if !ok || (!entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt)) {
		return nil, domain.ErrCacheMiss
	}
	boards := entry.boards.Clone()
	return &boards, nil
}

// Set сохраняет копию доски. ttl <= 0 - без срока жизни.
func (c *BoardCache) Set(ctx context.Context, ownerID string, boards domain.BoardSet, ttl time.Duration) error {
	entry := boardEntry{boards: boards.Clone()}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[ownerID] = entry
	c.mu.Unlock()
	return nil
}

func (c *BoardCache) Invalidate(ctx context.Context, ownerID string) error {
	c.mu.Lock()
	delete(c.entries, ownerID)
	c.mu.Unlock()
	return nil
}
