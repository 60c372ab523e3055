package port

import (
	"context"
	"listing-organizer/internal/core/domain"
)

// ListingsAPIPort - контракт внешнего API, которое владеет извлечением, загрузкой и хранением объектов.
// Учетные данные передаются явно в каждый вызов.
type ListingsAPIPort interface {
	ExtractProperty(ctx context.Context, cred domain.Credential, url string) (*domain.Property, error)
	UploadImages(ctx context.Context, cred domain.Credential, files []domain.UploadFile) ([]domain.Image, error)
	CreateProperty(ctx context.Context, cred domain.Credential, payload domain.PropertyPayload) (string, error)
	UpdateProperty(ctx context.Context, cred domain.Credential, id string, payload domain.PropertyPayload) error
	FetchProperty(ctx context.Context, cred domain.Credential, id string) (*domain.Property, error)
	FetchBoards(ctx context.Context, cred domain.Credential, filters domain.BoardFilters) ([]domain.RemoteBucket, error)
	UpdatePropertyBoardAssignment(ctx context.Context, cred domain.Credential, id string, assignment domain.BoardAssignment) error
	UpdatePropertyAvailability(ctx context.Context, cred domain.Credential, id string, available bool) error
}
