package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"listing-organizer/internal/contextkeys"
	"listing-organizer/internal/core/domain"
	"listing-organizer/internal/core/port"
	"listing-organizer/internal/core/port/usecases_port"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const (
	maxUploadMemory = 32 << 20
	uploadFormField = "files"
)

type WizardHandlers struct {
	wizardUC usecases_port.WizardUseCasePort
}

func NewWizardHandlers(wizardUC usecases_port.WizardUseCasePort) *WizardHandlers {
	return &WizardHandlers{wizardUC: wizardUC}
}

func (h *WizardHandlers) logger(r *http.Request, handler string) port.LoggerPort {
	return contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler":    handler,
		"session_id": chi.URLParam(r, "sessionID"),
	})
}

// CreateWizard - POST /api/v1/wizards
func (h *WizardHandlers) CreateWizard(w http.ResponseWriter, r *http.Request) {
	logger := h.logger(r, "CreateWizard")

	var reqDTO CreateWizardRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		if errors.Is(err, io.EOF) {
			WriteJSONError(w, http.StatusBadRequest, "Request body is empty")
			return
		}
		WriteJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	flow, ok := domain.ParseFlow(reqDTO.Flow)
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, "Field 'flow' must be one of: import, manual, edit")
		return
	}
	if flow == domain.FlowEdit && reqDTO.PropertyID == "" {
		WriteJSONError(w, http.StatusBadRequest, "Field 'propertyId' is required for edit flow")
		return
	}

	view, err := h.wizardUC.Create(r.Context(), credentialFromRequest(r), flow, reqDTO.PropertyID)
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, toWizardViewDTO(view))
}

// GetWizard - GET /api/v1/wizards/{sessionID}
func (h *WizardHandlers) GetWizard(w http.ResponseWriter, r *http.Request) {
	view, err := h.wizardUC.Get(r.Context(), credentialFromRequest(r), chi.URLParam(r, "sessionID"))
	h.respondView(w, r, "GetWizard", view, err)
}

func (h *WizardHandlers) StartWizard(w http.ResponseWriter, r *http.Request) {
	view, err := h.wizardUC.Start(r.Context(), credentialFromRequest(r), chi.URLParam(r, "sessionID"))
	h.respondView(w, r, "StartWizard", view, err)
}

func (h *WizardHandlers) NextStep(w http.ResponseWriter, r *http.Request) {
	view, err := h.wizardUC.Next(r.Context(), credentialFromRequest(r), chi.URLParam(r, "sessionID"))
	h.respondView(w, r, "NextStep", view, err)
}

func (h *WizardHandlers) PreviousStep(w http.ResponseWriter, r *http.Request) {
	view, err := h.wizardUC.Back(r.Context(), credentialFromRequest(r), chi.URLParam(r, "sessionID"))
	h.respondView(w, r, "PreviousStep", view, err)
}

// StartImport - POST /api/v1/wizards/{sessionID}/import
func (h *WizardHandlers) StartImport(w http.ResponseWriter, r *http.Request) {
	var reqDTO ImportRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil && !errors.Is(err, io.EOF) {
		WriteJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	view, err := h.wizardUC.StartImport(r.Context(), credentialFromRequest(r), chi.URLParam(r, "sessionID"), reqDTO.URL)
	h.respondView(w, r, "StartImport", view, err)
}

// RegisterFields - PATCH /api/v1/wizards/{sessionID}/fields
// Тело - объект {"путь": значение}, записи применяются в порядке следования ключей.
func (h *WizardHandlers) RegisterFields(w http.ResponseWriter, r *http.Request) {
	updates, err := decodeFieldUpdates(r.Body)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	view, err := h.wizardUC.RegisterFields(r.Context(), credentialFromRequest(r), chi.URLParam(r, "sessionID"), updates)
	h.respondView(w, r, "RegisterFields", view, err)
}

// ValidateStep - GET /api/v1/wizards/{sessionID}/steps/{step}/validation
func (h *WizardHandlers) ValidateStep(w http.ResponseWriter, r *http.Request) {
	logger := h.logger(r, "ValidateStep")

	step, ok := domain.ParseStep(chi.URLParam(r, "step"))
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, "Unknown step")
		return
	}

	missing, err := h.wizardUC.ValidateStep(r.Context(), credentialFromRequest(r), chi.URLParam(r, "sessionID"), step)
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, ValidationResponseDTO{Step: step.String(), Valid: len(missing) == 0, MissingFields: missing})
}

// UploadImages - POST /api/v1/wizards/{sessionID}/images, multipart с полем files.
func (h *WizardHandlers) UploadImages(w http.ResponseWriter, r *http.Request) {
	logger := h.logger(r, "UploadImages")

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Request must be multipart/form-data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[uploadFormField]
	if len(headers) == 0 {
		WriteJSONError(w, http.StatusBadRequest, "Field 'files' is required")
		return
	}

	files := make([]domain.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			logger.Error("Failed to open uploaded file", err, port.Fields{"file": fh.Filename})
			WriteJSONError(w, http.StatusBadRequest, "Could not read uploaded file")
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			logger.Error("Failed to read uploaded file", err, port.Fields{"file": fh.Filename})
			WriteJSONError(w, http.StatusBadRequest, "Could not read uploaded file")
			return
		}
		files = append(files, domain.UploadFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	result, err := h.wizardUC.UploadImages(r.Context(), credentialFromRequest(r), chi.URLParam(r, "sessionID"), files)
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, UploadResponseDTO{
		Wizard:   toWizardViewDTO(result.View),
		Uploaded: result.Uploaded,
		Failed:   result.Failed,
	})
}

// Submit - POST /api/v1/wizards/{sessionID}/submit
func (h *WizardHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	logger := h.logger(r, "Submit")

	propertyID, err := h.wizardUC.Submit(r.Context(), credentialFromRequest(r), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	logger.Info("Wizard submitted", port.Fields{"property_id": propertyID})
	RespondWithJSON(w, http.StatusOK, SubmitResponseDTO{PropertyID: propertyID})
}

// Dismiss - DELETE /api/v1/wizards/{sessionID}
func (h *WizardHandlers) Dismiss(w http.ResponseWriter, r *http.Request) {
	if err := h.wizardUC.Dismiss(r.Context(), credentialFromRequest(r), chi.URLParam(r, "sessionID")); err != nil {
		writeUseCaseError(w, h.logger(r, "Dismiss"), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondView отдает снимок сессии или ошибку use case.
func (h *WizardHandlers) respondView(w http.ResponseWriter, r *http.Request, handler string, view domain.WizardView, err error) {
	if err != nil {
		writeUseCaseError(w, h.logger(r, handler), err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toWizardViewDTO(view))
}

// decodeFieldUpdates читает объект поток-токенами, чтобы сохранить порядок ключей.
func decodeFieldUpdates(body io.Reader) ([]domain.FieldUpdate, error) {
	dec := json.NewDecoder(body)
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object")
	}

	var updates []domain.FieldUpdate
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		path, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected field path")
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("field %q: %w", path, err)
		}
		updates = append(updates, domain.FieldUpdate{Path: path, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return updates, nil
}
