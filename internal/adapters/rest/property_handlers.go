package rest

import (
	"listing-organizer/internal/contextkeys"
	"listing-organizer/internal/core/port"
	"listing-organizer/internal/core/port/usecases_port"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type PropertyHandlers struct {
	getPropertyUC usecases_port.GetPropertyUseCasePort
}

func NewPropertyHandlers(getPropertyUC usecases_port.GetPropertyUseCasePort) *PropertyHandlers {
	return &PropertyHandlers{getPropertyUC: getPropertyUC}
}

// GetProperty - GET /api/v1/properties/{propertyID}
func (h *PropertyHandlers) GetProperty(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "propertyID")
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetProperty", "property_id": propertyID})

	property, err := h.getPropertyUC.Execute(r.Context(), credentialFromRequest(r), propertyID)
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toPropertyDTO(*property))
}
