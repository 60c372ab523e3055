package port

import (
	"context"
	"listing-organizer/internal/core/domain"
	"time"
)

// BoardCachePort - кэш раскладки доски пользователя.
// Get возвращает domain.ErrCacheMiss, если записи нет.
type BoardCachePort interface {
	Get(ctx context.Context, ownerID string) (*domain.BoardSet, error)
	Set(ctx context.Context, ownerID string, boards domain.BoardSet, ttl time.Duration) error
	Invalidate(ctx context.Context, ownerID string) error
}

// PropertyCachePort - локальная копия объекта, на который мы ссылаемся по id после сохранения.
type PropertyCachePort interface {
	Get(ctx context.Context, ownerID, propertyID string) (*domain.Property, error)
	Put(ctx context.Context, ownerID string, property domain.Property) error
	Delete(ctx context.Context, ownerID, propertyID string) error
}
