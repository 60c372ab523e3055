package usecases_port

import (
	"context"
	"listing-organizer/internal/core/domain"
)

type BoardUseCasePort interface {
	GetBoards(ctx context.Context, cred domain.Credential, filters domain.BoardFilters) (domain.BoardSet, error)
	LoadBoards(ctx context.Context, cred domain.Credential, filters domain.BoardFilters) (domain.BoardSet, error)
	SetFilters(ctx context.Context, cred domain.Credential, filters domain.BoardFilters)
	// OnDragEnd возвращает nil, если перетаскивание ничего не изменило.
	OnDragEnd(ctx context.Context, cred domain.Credential, drag domain.DragResult) (*domain.BoardSet, error)
	MarkUnavailable(ctx context.Context, cred domain.Credential, propertyID string) (domain.BoardSet, error)
	ReassignBucket(ctx context.Context, cred domain.Credential, propertyID, bucket string) (domain.BoardSet, error)
}
