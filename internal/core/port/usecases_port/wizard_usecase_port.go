package usecases_port

import (
	"context"
	"listing-organizer/internal/core/domain"
)

// WizardUseCasePort - операции над сессиями мастера добавления/редактирования объекта.
type WizardUseCasePort interface {
	Create(ctx context.Context, cred domain.Credential, flow domain.Flow, propertyID string) (domain.WizardView, error)
	Get(ctx context.Context, cred domain.Credential, sessionID string) (domain.WizardView, error)
	Start(ctx context.Context, cred domain.Credential, sessionID string) (domain.WizardView, error)
	Next(ctx context.Context, cred domain.Credential, sessionID string) (domain.WizardView, error)
	Back(ctx context.Context, cred domain.Credential, sessionID string) (domain.WizardView, error)
	StartImport(ctx context.Context, cred domain.Credential, sessionID, url string) (domain.WizardView, error)
	RegisterFields(ctx context.Context, cred domain.Credential, sessionID string, updates []domain.FieldUpdate) (domain.WizardView, error)
	ValidateStep(ctx context.Context, cred domain.Credential, sessionID string, step domain.Step) ([]string, error)
	UploadImages(ctx context.Context, cred domain.Credential, sessionID string, files []domain.UploadFile) (domain.UploadResult, error)
	Submit(ctx context.Context, cred domain.Credential, sessionID string) (string, error)
	Dismiss(ctx context.Context, cred domain.Credential, sessionID string) error
}
