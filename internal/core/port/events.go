package port

import (
	"context"
	"listing-organizer/internal/core/domain"
)

// EventPublisherPort - контракт для публикации доменных событий.
type EventPublisherPort interface {
	Publish(ctx context.Context, event domain.PropertyEvent) error
}
