package usecases_port

import (
	"context"
	"listing-organizer/internal/core/domain"
)

type GetPropertyUseCasePort interface {
	Execute(ctx context.Context, cred domain.Credential, propertyID string) (*domain.Property, error)
}
