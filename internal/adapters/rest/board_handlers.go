package rest

import (
	"encoding/json"
	"fmt"
	"listing-organizer/internal/contextkeys"
	"listing-organizer/internal/core/domain"
	"listing-organizer/internal/core/port"
	"listing-organizer/internal/core/port/usecases_port"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type BoardHandlers struct {
	boardUC usecases_port.BoardUseCasePort
}

func NewBoardHandlers(boardUC usecases_port.BoardUseCasePort) *BoardHandlers {
	return &BoardHandlers{boardUC: boardUC}
}

// GetBoards - GET /api/v1/boards?address=&available=&unavailable=
func (h *BoardHandlers) GetBoards(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetBoards"})

	filters, err := parseBoardFilters(r)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	boards, err := h.boardUC.GetBoards(r.Context(), credentialFromRequest(r), filters)
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toBoardSetDTO(boards))
}

// SetFilters - PUT /api/v1/boards/filters. Перезагрузка доски откладывается, ответ 202.
func (h *BoardHandlers) SetFilters(w http.ResponseWriter, r *http.Request) {
	var reqDTO BoardFiltersDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		WriteJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	h.boardUC.SetFilters(r.Context(), credentialFromRequest(r), domain.BoardFilters{
		Address:     reqDTO.Address,
		Available:   reqDTO.Available,
		Unavailable: reqDTO.Unavailable,
	})
	w.WriteHeader(http.StatusAccepted)
}

// MoveCard - POST /api/v1/boards/moves
func (h *BoardHandlers) MoveCard(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "MoveCard"})

	var reqDTO MoveRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		WriteJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	boards, err := h.boardUC.OnDragEnd(r.Context(), credentialFromRequest(r), domain.DragResult{
		SourceBucket: reqDTO.SourceBucket,
		SourceIndex:  reqDTO.SourceIndex,
		DestBucket:   reqDTO.DestBucket,
		DestIndex:    reqDTO.DestIndex,
	})
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	if boards == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	RespondWithJSON(w, http.StatusOK, toBoardSetDTO(*boards))
}

// MarkUnavailable - POST /api/v1/boards/properties/{propertyID}/unavailable
func (h *BoardHandlers) MarkUnavailable(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "propertyID")
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "MarkUnavailable", "property_id": propertyID})

	boards, err := h.boardUC.MarkUnavailable(r.Context(), credentialFromRequest(r), propertyID)
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toBoardSetDTO(boards))
}

// ReassignBucket - PUT /api/v1/boards/properties/{propertyID}/bucket
func (h *BoardHandlers) ReassignBucket(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "propertyID")
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ReassignBucket", "property_id": propertyID})

	var reqDTO ReassignRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		WriteJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if reqDTO.Bucket == "" {
		WriteJSONError(w, http.StatusBadRequest, "Field 'bucket' is required")
		return
	}

	boards, err := h.boardUC.ReassignBucket(r.Context(), credentialFromRequest(r), propertyID, reqDTO.Bucket)
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toBoardSetDTO(boards))
}

func parseBoardFilters(r *http.Request) (domain.BoardFilters, error) {
	q := r.URL.Query()
	filters := domain.BoardFilters{Address: q.Get("address")}

	var err error
	if filters.Available, err = parseQueryBool(q.Get("available")); err != nil {
		return domain.BoardFilters{}, fmt.Errorf("invalid 'available' parameter")
	}
	if filters.Unavailable, err = parseQueryBool(q.Get("unavailable")); err != nil {
		return domain.BoardFilters{}, fmt.Errorf("invalid 'unavailable' parameter")
	}
	return filters, nil
}

func parseQueryBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}
