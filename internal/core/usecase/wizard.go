package usecase

import (
	"context"
	"errors"
	"fmt"
	"listing-organizer/internal/contextkeys"
	"listing-organizer/internal/core/domain"
	"listing-organizer/internal/core/port"
	"listing-organizer/internal/core/port/usecases_port"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// WizardUseCase ведет сессии мастера: переходы между шагами, импорт, загрузку фото и отправку.
type WizardUseCase struct {
	api               port.ListingsAPIPort
	getProperty       usecases_port.GetPropertyUseCasePort
	cache             port.PropertyCachePort
	events            port.EventPublisherPort
	uploadConcurrency int
	sessions          *sessionStore
	now               func() time.Time
}

var _ usecases_port.WizardUseCasePort = (*WizardUseCase)(nil)

func NewWizardUseCase(
	api port.ListingsAPIPort,
	getProperty usecases_port.GetPropertyUseCasePort,
	cache port.PropertyCachePort,
	events port.EventPublisherPort,
	uploadConcurrency int,
) *WizardUseCase {
	if uploadConcurrency <= 0 {
		uploadConcurrency = 1
	}
	return &WizardUseCase{
		api:               api,
		getProperty:       getProperty,
		cache:             cache,
		events:            events,
		uploadConcurrency: uploadConcurrency,
		sessions:          newSessionStore(),
		now:               time.Now,
	}
}

func wizardLogger(ctx context.Context, method string, cred domain.Credential, sessionID string) port.LoggerPort {
	return contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   "Wizard",
		"method":     method,
		"user_id":    cred.UserID,
		"session_id": sessionID,
	})
}

// Create открывает новую сессию. Для сценария редактирования черновик заполняется
// данными существующего объекта.
func (uc *WizardUseCase) Create(ctx context.Context, cred domain.Credential, flow domain.Flow, propertyID string) (domain.WizardView, error) {
	ucLogger := wizardLogger(ctx, "Create", cred, "")

	if _, ok := domain.ParseFlow(string(flow)); !ok {
		return domain.WizardView{}, fmt.Errorf("%w: unknown flow %q", domain.ErrValidation, flow)
	}

	var prefill *domain.Property
	if flow == domain.FlowEdit {
		property, err := uc.getProperty.Execute(ctx, cred, propertyID)
		if err != nil {
			ucLogger.Error("Failed to load property for edit", err, port.Fields{"property_id": propertyID})
			return domain.WizardView{}, err
		}
		prefill = property
	}

	sess := uc.sessions.create(cred.UserID, domain.NewWizardState(flow, prefill))
	ucLogger.Info("Wizard session opened", port.Fields{"session_id": sess.id, "flow": flow})
	return sess.state.View(sess.id), nil
}

// withSession выполняет fn под мьютексом сессии и возвращает снимок после fn.
func (uc *WizardUseCase) withSession(cred domain.Credential, sessionID string, fn func(*wizardSession) error) (domain.WizardView, error) {
	sess, err := uc.sessions.get(cred.UserID, sessionID)
	if err != nil {
		return domain.WizardView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := fn(sess); err != nil {
		return sess.state.View(sess.id), err
	}
	return sess.state.View(sess.id), nil
}

func (uc *WizardUseCase) Get(ctx context.Context, cred domain.Credential, sessionID string) (domain.WizardView, error) {
	return uc.withSession(cred, sessionID, func(*wizardSession) error { return nil })
}

// Start - повторное открытие формы: сброс на первый шаг.
func (uc *WizardUseCase) Start(ctx context.Context, cred domain.Credential, sessionID string) (domain.WizardView, error) {
	return uc.withSession(cred, sessionID, func(s *wizardSession) error {
		s.state.Start()
		wizardLogger(ctx, "Start", cred, sessionID).Debug("Wizard reset", nil)
		return nil
	})
}

func (uc *WizardUseCase) Next(ctx context.Context, cred domain.Credential, sessionID string) (domain.WizardView, error) {
	return uc.withSession(cred, sessionID, func(s *wizardSession) error {
		from := s.state.Current()
		if err := s.state.Next(); err != nil {
			wizardLogger(ctx, "Next", cred, sessionID).Debug("Transition rejected", port.Fields{"step": from.String(), "reason": err.Error()})
			return err
		}
		return nil
	})
}

func (uc *WizardUseCase) Back(ctx context.Context, cred domain.Credential, sessionID string) (domain.WizardView, error) {
	return uc.withSession(cred, sessionID, func(s *wizardSession) error {
		return s.state.Back()
	})
}

// StartImport заполняет черновик данными, извлеченными по ссылке на объявление.
// При ошибке состояние не меняется, клиенту уходит общая ошибка импорта.
func (uc *WizardUseCase) StartImport(ctx context.Context, cred domain.Credential, sessionID, url string) (domain.WizardView, error) {
	ucLogger := wizardLogger(ctx, "StartImport", cred, sessionID)

	return uc.withSession(cred, sessionID, func(s *wizardSession) error {
		url = strings.TrimSpace(url)
		if url == "" {
			return &domain.ValidationError{Step: domain.StepImport, Fields: []string{"url"}}
		}
		if !s.state.HasStep(domain.StepImport) {
			return fmt.Errorf("%w: flow %s has no import step", domain.ErrStepUnavailable, s.state.Flow)
		}

		property, err := uc.api.ExtractProperty(ctx, cred, url)
		if err != nil {
			ucLogger.Error("Property extraction failed", err, port.Fields{"url": url})
			return domain.ErrImportFailed
		}
		if err := s.state.ApplyImport(url, *property); err != nil {
			return err
		}

		ucLogger.Info("Property imported", port.Fields{"url": url, "images_count": len(s.state.UploadedImages)})
		return nil
	})
}

// RegisterFields применяет записи по порядку. На первой ошибке останавливается,
// уже примененные записи остаются в черновике.
func (uc *WizardUseCase) RegisterFields(ctx context.Context, cred domain.Credential, sessionID string, updates []domain.FieldUpdate) (domain.WizardView, error) {
	return uc.withSession(cred, sessionID, func(s *wizardSession) error {
		for _, u := range updates {
			if err := s.state.RegisterField(u.Path, u.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

// ValidateStep возвращает список незаполненных обязательных полей шага.
func (uc *WizardUseCase) ValidateStep(ctx context.Context, cred domain.Credential, sessionID string, step domain.Step) ([]string, error) {
	var missing []string
	_, err := uc.withSession(cred, sessionID, func(s *wizardSession) error {
		if !s.state.HasStep(step) {
			return fmt.Errorf("%w: step %s is not part of flow %s", domain.ErrStepUnavailable, step, s.state.Flow)
		}
		missing = domain.MissingFields(s.state.Draft, step)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if missing == nil {
		missing = []string{}
	}
	return missing, nil
}

// UploadImages загружает каждый файл отдельным запросом, параллельно.
// Ссылки добавляются в порядке завершения загрузок, неудачные файлы пропускаются.
// ErrUploadFailed - только если не загрузился ни один файл.
func (uc *WizardUseCase) UploadImages(ctx context.Context, cred domain.Credential, sessionID string, files []domain.UploadFile) (domain.UploadResult, error) {
	ucLogger := wizardLogger(ctx, "UploadImages", cred, sessionID)

	sess, err := uc.sessions.get(cred.UserID, sessionID)
	if err != nil {
		return domain.UploadResult{}, err
	}

	var (
		mu       sync.Mutex
		failures []error
		uploaded int
	)
	g := new(errgroup.Group)
	g.SetLimit(uc.uploadConcurrency)
	for _, f := range files {
		g.Go(func() error {
			images, err := uc.api.UploadImages(ctx, cred, []domain.UploadFile{f})
			if err == nil && len(images) == 0 {
				err = fmt.Errorf("%w: no image returned for %s", domain.ErrRemoteCall, f.Name)
			}
			if err != nil {
				mu.Lock()
				failures = append(failures, fmt.Errorf("%s: %w", f.Name, err))
				mu.Unlock()
				return nil
			}

			sess.mu.Lock()
			sess.state.AppendImages(images...)
			sess.mu.Unlock()

			mu.Lock()
			uploaded++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) > 0 {
		ucLogger.Error("Some images failed to upload", errors.Join(failures...), port.Fields{"failed": len(failures), "files_count": len(files)})
	} else {
		ucLogger.Info("Images uploaded", port.Fields{"files_count": len(files)})
	}

	sess.mu.Lock()
	view := sess.state.View(sess.id)
	sess.mu.Unlock()

	result := domain.UploadResult{View: view, Uploaded: uploaded, Failed: len(failures)}
	if uploaded == 0 && len(failures) > 0 {
		return result, domain.ErrUploadFailed
	}
	return result, nil
}

// Submit отправляет черновик во внешний API. При успехе сессия закрывается,
// при ошибке остается на последнем шаге с нетронутым черновиком.
func (uc *WizardUseCase) Submit(ctx context.Context, cred domain.Credential, sessionID string) (string, error) {
	ucLogger := wizardLogger(ctx, "Submit", cred, sessionID)

	sess, err := uc.sessions.get(cred.UserID, sessionID)
	if err != nil {
		return "", err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	state := sess.state
	if !state.IsLast() {
		return "", fmt.Errorf("%w: submit from step %s", domain.ErrStepUnavailable, state.Current())
	}
	payload, err := state.Payload()
	if err != nil {
		return "", err
	}

	propertyID := state.PropertyID
	eventType := domain.EventPropertyUpdated
	if state.Flow == domain.FlowEdit {
		err = uc.api.UpdateProperty(ctx, cred, propertyID, payload)
	} else {
		eventType = domain.EventPropertyCreated
		propertyID, err = uc.api.CreateProperty(ctx, cred, payload)
	}
	if err != nil {
		ucLogger.Error("Failed to submit property", err, port.Fields{"flow": state.Flow})
		return "", domain.ErrSubmitFailed
	}

	uc.sessions.delete(sess.id)

	saved := savedProperty(propertyID, state, payload)
	if err := uc.cache.Put(ctx, cred.UserID, saved); err != nil {
		ucLogger.Warn("Failed to store submitted property in cache", port.Fields{"error": err.Error()})
	}

	event := domain.PropertyEvent{
		Type:       eventType,
		PropertyID: propertyID,
		UserID:     cred.UserID,
		OccurredAt: uc.now().UTC(),
		Attributes: map[string]any{"flow": string(state.Flow), "images_count": len(payload.Images)},
	}
	if err := uc.events.Publish(ctx, event); err != nil {
		ucLogger.Warn("Failed to publish property event", port.Fields{"error": err.Error(), "event_type": eventType})
	}

	ucLogger.Info("Property submitted", port.Fields{"property_id": propertyID, "flow": state.Flow})
	return propertyID, nil
}

// savedProperty - объект в том виде, в котором он теперь лежит во внешнем API.
func savedProperty(id string, state *domain.WizardState, payload domain.PropertyPayload) domain.Property {
	p := domain.Property{
		ID:          id,
		Address:     payload.Address,
		Mode:        domain.ModeFromFlags(payload.IsRent, payload.IsSell),
		Information: payload.Information,
		Costs:       payload.Costs,
		Images:      payload.Images,
		Provider:    payload.Provider,
		Available:   true,
	}
	if state.Flow == domain.FlowEdit {
		p.Available = state.Draft.Available
		p.BoardAssignment = state.Draft.BoardAssignment
	}
	return p.Clone()
}

func (uc *WizardUseCase) Dismiss(ctx context.Context, cred domain.Credential, sessionID string) error {
	if _, err := uc.sessions.get(cred.UserID, sessionID); err != nil {
		return err
	}
	uc.sessions.delete(sessionID)
	wizardLogger(ctx, "Dismiss", cred, sessionID).Debug("Wizard session dismissed", nil)
	return nil
}
