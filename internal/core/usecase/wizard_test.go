package usecase

import (
	"context"
	"errors"
	"fmt"
	"listing-organizer/internal/core/domain"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = domain.Credential{UserID: "alice", Token: "t-alice"}
	bob   = domain.Credential{UserID: "bob", Token: "t-bob"}
)

type wizardFixture struct {
	api    *fakeAPI
	cache  *fakePropertyCache
	events *fakePublisher
	uc     *WizardUseCase
}

func newWizardFixture() *wizardFixture {
	f := &wizardFixture{api: &fakeAPI{}, cache: newFakePropertyCache(), events: &fakePublisher{}}
	f.uc = NewWizardUseCase(f.api, NewGetPropertyUseCase(f.api, f.cache), f.cache, f.events, 3)
	return f
}

func basicInfo(mode domain.Mode) []domain.FieldUpdate {
	return []domain.FieldUpdate{
		{Path: "address", Value: "Rua Harmonia, 40"},
		{Path: "mode", Value: string(mode)},
		{Path: "information.totalArea", Value: 62.0},
		{Path: "information.bedrooms", Value: 2.0},
		{Path: "information.bathrooms", Value: 1.0},
		{Path: "information.parkingSlots", Value: 1.0},
	}
}

// walkToPhotos проводит сессию ручного ввода до последнего шага.
func walkToPhotos(t *testing.T, f *wizardFixture, sessionID string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.uc.RegisterFields(ctx, alice, sessionID, basicInfo(domain.ModeRent))
	require.NoError(t, err)
	_, err = f.uc.RegisterFields(ctx, alice, sessionID, []domain.FieldUpdate{{Path: "costs.rentValue", Value: 3100.0}, {Path: "costs.sellPrice", Value: 1.0}})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = f.uc.Next(ctx, alice, sessionID)
		require.NoError(t, err)
	}
}

func TestWizardManualFlowSubmit(t *testing.T) {
	f := newWizardFixture()
	f.api.create = func(p domain.PropertyPayload) (string, error) { return "prop-1", nil }
	ctx := context.Background()

	view, err := f.uc.Create(ctx, alice, domain.FlowManual, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StepBasicInfo, view.Current)
	assert.False(t, view.CanBack)

	_, err = f.uc.Submit(ctx, alice, view.SessionID)
	assert.ErrorIs(t, err, domain.ErrStepUnavailable, "submit is only available from the last step")

	walkToPhotos(t, f, view.SessionID)
	id, err := f.uc.Submit(ctx, alice, view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "prop-1", id)

	require.Len(t, f.api.createPayloads, 1)
	payload := f.api.createPayloads[0]
	assert.Equal(t, domain.Costs{domain.CostRent: 3100}, payload.Costs, "sellPrice is not available in rent mode")
	assert.Equal(t, domain.ProviderOwn, payload.Provider)

	cached, err := f.cache.Get(ctx, "alice", "prop-1")
	require.NoError(t, err)
	assert.Equal(t, "Rua Harmonia, 40", cached.Address)
	assert.Equal(t, []string{domain.EventPropertyCreated}, f.events.types())

	_, err = f.uc.Get(ctx, alice, view.SessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound, "session is discarded after submit")
}

func TestWizardSubmitFailureKeepsSession(t *testing.T) {
	f := newWizardFixture()
	f.api.create = func(p domain.PropertyPayload) (string, error) {
		return "", fmt.Errorf("%w: 500", domain.ErrRemoteCall)
	}
	ctx := context.Background()

	view, err := f.uc.Create(ctx, alice, domain.FlowManual, "")
	require.NoError(t, err)
	walkToPhotos(t, f, view.SessionID)

	_, err = f.uc.Submit(ctx, alice, view.SessionID)
	require.ErrorIs(t, err, domain.ErrSubmitFailed)
	assert.NotErrorIs(t, err, domain.ErrRemoteCall, "remote details are not leaked")

	after, err := f.uc.Get(ctx, alice, view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepPhotos, after.Current)
	assert.Equal(t, "Rua Harmonia, 40", after.Draft.Address)
	assert.Empty(t, f.events.types())
}

func TestWizardImport(t *testing.T) {
	f := newWizardFixture()
	f.api.extract = func(url string) (*domain.Property, error) {
		return &domain.Property{
			Address: "Av. Brasil, 1",
			Mode:    domain.ModeSell,
			Images:  []domain.Image{{URL: "https://cdn/i.jpg"}},
		}, nil
	}
	ctx := context.Background()

	view, err := f.uc.Create(ctx, alice, domain.FlowImport, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StepImport, view.Current)

	_, err = f.uc.StartImport(ctx, alice, view.SessionID, "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	view, err = f.uc.StartImport(ctx, alice, view.SessionID, "https://portal/ad/3")
	require.NoError(t, err)
	assert.Equal(t, domain.StepBasicInfo, view.Current)
	assert.Equal(t, domain.ModeSell, view.Draft.Mode)
	assert.Equal(t, []domain.Image{{URL: "https://cdn/i.jpg"}}, view.Images)
	assert.Equal(t, "https://portal/ad/3", view.ImportURL)
}

func TestWizardImportTwiceIsIdempotent(t *testing.T) {
	f := newWizardFixture()
	imported := &domain.Property{
		Address: "Av. Brasil, 1",
		Mode:    domain.ModeRent,
		Costs:   map[domain.CostKind]float64{domain.CostRent: 2500},
		Images:  []domain.Image{{URL: "https://cdn/i.jpg", Description: "fachada"}},
	}
	f.api.extract = func(url string) (*domain.Property, error) { return imported, nil }
	ctx := context.Background()

	view, err := f.uc.Create(ctx, alice, domain.FlowImport, "")
	require.NoError(t, err)
	first, err := f.uc.StartImport(ctx, alice, view.SessionID, "https://portal/ad/3")
	require.NoError(t, err)

	_, err = f.uc.RegisterFields(ctx, alice, view.SessionID, []domain.FieldUpdate{
		{Path: "address", Value: "Rua Augusta, 900"},
		{Path: "costs.rentValue", Value: 9999.0},
		{Path: "images.0.description", Value: "sala"},
	})
	require.NoError(t, err)

	second, err := f.uc.StartImport(ctx, alice, view.SessionID, "https://portal/ad/3")
	require.NoError(t, err)
	assert.Equal(t, first.Draft, second.Draft)
	assert.Equal(t, first.Images, second.Images)
	assert.Equal(t, first.Current, second.Current)
	assert.Equal(t, "fachada", imported.Images[0].Description)
	assert.Equal(t, 2500.0, imported.Costs[domain.CostRent])
}

func TestWizardImportFailureLeavesStateUntouched(t *testing.T) {
	f := newWizardFixture()
	f.api.extract = func(url string) (*domain.Property, error) {
		return nil, errors.New("connection refused")
	}
	ctx := context.Background()

	view, err := f.uc.Create(ctx, alice, domain.FlowImport, "")
	require.NoError(t, err)

	after, err := f.uc.StartImport(ctx, alice, view.SessionID, "https://portal/ad/3")
	require.ErrorIs(t, err, domain.ErrImportFailed)
	assert.Equal(t, domain.StepImport, after.Current)
	assert.Empty(t, after.ImportURL)
	assert.Empty(t, after.Draft.Address)
}

func TestWizardImportNotAvailableInManualFlow(t *testing.T) {
	f := newWizardFixture()
	ctx := context.Background()
	view, err := f.uc.Create(ctx, alice, domain.FlowManual, "")
	require.NoError(t, err)

	_, err = f.uc.StartImport(ctx, alice, view.SessionID, "https://portal/ad/3")
	assert.ErrorIs(t, err, domain.ErrStepUnavailable)
}

func TestWizardUploadImagesAppendsSuccessfulOnly(t *testing.T) {
	f := newWizardFixture()
	var calls atomic.Int32
	f.api.upload = func(file domain.UploadFile) ([]domain.Image, error) {
		calls.Add(1)
		if file.Name == "broken.jpg" {
			return nil, fmt.Errorf("%w: 413", domain.ErrRemoteCall)
		}
		return []domain.Image{{URL: "https://cdn/" + file.Name}}, nil
	}
	ctx := context.Background()

	view, err := f.uc.Create(ctx, alice, domain.FlowManual, "")
	require.NoError(t, err)

	res, err := f.uc.UploadImages(ctx, alice, view.SessionID, []domain.UploadFile{
		{Name: "a.jpg"}, {Name: "broken.jpg"}, {Name: "b.jpg"}, {Name: "c.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(4), calls.Load())
	assert.Equal(t, 3, res.Uploaded)
	assert.Equal(t, 1, res.Failed)

	urls := make([]string, 0, len(res.View.Images))
	for _, img := range res.View.Images {
		urls = append(urls, img.URL)
	}
	assert.ElementsMatch(t, []string{"https://cdn/a.jpg", "https://cdn/b.jpg", "https://cdn/c.jpg"}, urls)
	// загрузка не зависит от шага
	assert.Equal(t, domain.StepBasicInfo, res.View.Current)
}

func TestWizardUploadImagesAllFailed(t *testing.T) {
	f := newWizardFixture()
	f.api.upload = func(file domain.UploadFile) ([]domain.Image, error) {
		return nil, fmt.Errorf("%w: 503", domain.ErrRemoteCall)
	}
	ctx := context.Background()

	view, err := f.uc.Create(ctx, alice, domain.FlowManual, "")
	require.NoError(t, err)

	res, err := f.uc.UploadImages(ctx, alice, view.SessionID, []domain.UploadFile{{Name: "a.jpg"}, {Name: "b.jpg"}})
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	assert.Equal(t, 2, res.Failed)
	assert.Empty(t, res.View.Images)
}

func TestWizardEditFlow(t *testing.T) {
	f := newWizardFixture()
	bedrooms := 3
	area := 90.0
	f.api.fetch = func(id string) (*domain.Property, error) {
		return &domain.Property{
			ID:          id,
			Address:     "Rua Oscar Freire, 2",
			Mode:        domain.ModeRent,
			Information: domain.Information{Bedrooms: &bedrooms, Bathrooms: &bedrooms, ParkingSlots: &bedrooms, TotalArea: &area},
			Costs:       domain.Costs{domain.CostRent: 5000},
			Available:   false,
		}, nil
	}
	var updated domain.PropertyPayload
	f.api.update = func(id string, p domain.PropertyPayload) error {
		assert.Equal(t, "p-9", id)
		updated = p
		return nil
	}
	ctx := context.Background()

	view, err := f.uc.Create(ctx, alice, domain.FlowEdit, "p-9")
	require.NoError(t, err)
	assert.Equal(t, "p-9", view.PropertyID)
	assert.Equal(t, "Rua Oscar Freire, 2", view.Draft.Address)

	// второй раз объект берется из кэша
	_, err = f.uc.Create(ctx, alice, domain.FlowEdit, "p-9")
	require.NoError(t, err)
	assert.Equal(t, 1, f.api.fetchCalls)

	_, err = f.uc.RegisterFields(ctx, alice, view.SessionID, []domain.FieldUpdate{{Path: "costs.rentValue", Value: "5200"}})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = f.uc.Next(ctx, alice, view.SessionID)
		require.NoError(t, err)
	}

	id, err := f.uc.Submit(ctx, alice, view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "p-9", id)
	assert.Equal(t, 5200.0, updated.Costs[domain.CostRent])
	assert.Equal(t, []string{domain.EventPropertyUpdated}, f.events.types())

	cached, err := f.cache.Get(ctx, "alice", "p-9")
	require.NoError(t, err)
	assert.False(t, cached.Available)
	assert.Equal(t, 5200.0, cached.Costs[domain.CostRent])
}

func TestWizardEditRequiresPropertyID(t *testing.T) {
	f := newWizardFixture()
	_, err := f.uc.Create(context.Background(), alice, domain.FlowEdit, "")
	assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)

	_, err = f.uc.Create(context.Background(), alice, domain.Flow("wizard"), "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestWizardSessionsAreOwned(t *testing.T) {
	f := newWizardFixture()
	ctx := context.Background()
	view, err := f.uc.Create(ctx, alice, domain.FlowManual, "")
	require.NoError(t, err)

	_, err = f.uc.Get(ctx, bob, view.SessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, f.uc.Dismiss(ctx, bob, view.SessionID), domain.ErrSessionNotFound)

	require.NoError(t, f.uc.Dismiss(ctx, alice, view.SessionID))
	assert.Zero(t, f.uc.sessions.count())
}

func TestWizardStartReopens(t *testing.T) {
	f := newWizardFixture()
	ctx := context.Background()
	view, err := f.uc.Create(ctx, alice, domain.FlowManual, "")
	require.NoError(t, err)
	walkToPhotos(t, f, view.SessionID)

	view, err = f.uc.Start(ctx, alice, view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepBasicInfo, view.Current)
	assert.Empty(t, view.Draft.Address)
}

func TestWizardValidateStep(t *testing.T) {
	f := newWizardFixture()
	ctx := context.Background()
	view, err := f.uc.Create(ctx, alice, domain.FlowManual, "")
	require.NoError(t, err)

	_, err = f.uc.RegisterFields(ctx, alice, view.SessionID, []domain.FieldUpdate{{Path: "mode", Value: "both"}})
	require.NoError(t, err)

	missing, err := f.uc.ValidateStep(ctx, alice, view.SessionID, domain.StepCosts)
	require.NoError(t, err)
	assert.Equal(t, []string{"costs.rentValue", "costs.sellPrice"}, missing)

	missing, err = f.uc.ValidateStep(ctx, alice, view.SessionID, domain.StepPhotos)
	require.NoError(t, err)
	assert.Empty(t, missing)
	assert.NotNil(t, missing)

	_, err = f.uc.ValidateStep(ctx, alice, view.SessionID, domain.StepImport)
	assert.ErrorIs(t, err, domain.ErrStepUnavailable)
}

func TestWizardRegisterFieldsStopsOnFirstError(t *testing.T) {
	f := newWizardFixture()
	ctx := context.Background()
	view, err := f.uc.Create(ctx, alice, domain.FlowManual, "")
	require.NoError(t, err)

	after, err := f.uc.RegisterFields(ctx, alice, view.SessionID, []domain.FieldUpdate{
		{Path: "address", Value: "first"},
		{Path: "information.bedrooms", Value: "many"},
		{Path: "provider", Value: "never applied"},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "first", after.Draft.Address)
	assert.Empty(t, after.Draft.Provider)
}
