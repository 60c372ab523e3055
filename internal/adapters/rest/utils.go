package rest

import (
	"encoding/json"
	"errors"
	"listing-organizer/internal/core/domain"
	"listing-organizer/internal/core/port"
	"net/http"
)

// WriteJSONError отправляет JSON-ответ с полем "error" и заданным статусом
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, ErrorResponseDTO{Error: message})
}

// RespondWithJSON отправляет JSON-ответ
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(response)
}

// writeUseCaseError переводит ошибку use case в HTTP-ответ.
// Подробности удаленных сбоев клиенту не отдаются, только в лог.
func writeUseCaseError(w http.ResponseWriter, logger port.LoggerPort, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		RespondWithJSON(w, http.StatusBadRequest, ErrorResponseDTO{
			Error:  "Required fields are missing",
			Step:   validationErr.Step.String(),
			Fields: validationErr.Fields,
		})
	case errors.Is(err, domain.ErrValidation):
		WriteJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrStepUnavailable):
		WriteJSONError(w, http.StatusConflict, "Step transition is not available")
	case errors.Is(err, domain.ErrSessionNotFound):
		WriteJSONError(w, http.StatusNotFound, "Wizard session not found")
	case errors.Is(err, domain.ErrInvalidIdentifier):
		WriteJSONError(w, http.StatusUnauthorized, "Invalid identifier")
	case errors.Is(err, domain.ErrBucketUnknown):
		WriteJSONError(w, http.StatusBadRequest, "Unknown board bucket")
	case errors.Is(err, domain.ErrCardNotFound):
		WriteJSONError(w, http.StatusNotFound, "Card not found on board")
	case errors.Is(err, domain.ErrImportFailed):
		WriteJSONError(w, http.StatusBadGateway, "Could not import the listing")
	case errors.Is(err, domain.ErrUploadFailed):
		WriteJSONError(w, http.StatusBadGateway, "Could not upload images")
	case errors.Is(err, domain.ErrSubmitFailed):
		WriteJSONError(w, http.StatusBadGateway, "Could not save the property")
	case errors.Is(err, domain.ErrRemoteCall):
		logger.Error("Remote call failed", err, nil)
		WriteJSONError(w, http.StatusBadGateway, "Upstream service is unavailable")
	default:
		logger.Error("Unhandled use case error", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}
