package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/interfaces"
	"github.com/ternarybob/aucsheet/internal/models"
	"github.com/ternarybob/aucsheet/internal/services/extractor"
	"github.com/ternarybob/aucsheet/internal/services/sheets"
)

// SheetHandler exposes auction sheet reads, manual entry and updates
type SheetHandler struct {
	sheetService *sheets.Service
	logger       arbor.ILogger
}

// NewSheetHandler creates a new sheet handler
func NewSheetHandler(sheetService *sheets.Service, logger arbor.ILogger) *SheetHandler {
	return &SheetHandler{
		sheetService: sheetService,
		logger:       logger,
	}
}

// CreateHandler handles POST /api/sheets (manual entry)
func (h *SheetHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var data models.AuctionData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sheet, err := h.sheetService.CreateManualSheet(r.Context(), &data)
	if err != nil {
		var violation *extractor.SchemaViolation
		switch {
		case errors.As(err, &violation):
			WriteError(w, http.StatusUnprocessableEntity, violation.Error())
		case errors.Is(err, sheets.ErrDuplicateLotNumber):
			WriteError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error().Err(err).Msg("Failed to create manual sheet")
			WriteError(w, http.StatusInternalServerError, "failed to create sheet")
		}
		return
	}
	WriteJSON(w, http.StatusCreated, sheet)
}

// ListHandler handles GET /api/sheets with optional filters:
// make, model, status, min_grade, lot_number, limit, offset.
func (h *SheetHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if lot := query.Get("lot_number"); lot != "" {
		sheet, err := h.sheetService.GetSheetByLotNumber(r.Context(), lot)
		if err != nil {
			if errors.Is(err, sheets.ErrSheetNotFound) {
				WriteError(w, http.StatusNotFound, "sheet not found")
				return
			}
			WriteError(w, http.StatusInternalServerError, "failed to look up sheet")
			return
		}
		WriteJSON(w, http.StatusOK, sheet)
		return
	}

	limit := QueryInt(r, "limit", 50)
	if query.Get("make") != "" || query.Get("model") != "" || query.Get("status") != "" || query.Get("auction_house") != "" || query.Get("min_grade") != "" {
		filter := &interfaces.SheetFilter{
			Make:          query.Get("make"),
			Model:         query.Get("model"),
			AuctionStatus: query.Get("status"),
			AuctionHouse:  query.Get("auction_house"),
			MinGrade:      query.Get("min_grade"),
			Limit:         limit,
		}
		results, err := h.sheetService.SearchSheets(r.Context(), filter)
		if err != nil {
			h.logger.Error().Err(err).Msg("Sheet search failed")
			WriteError(w, http.StatusInternalServerError, "search failed")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"sheets": results, "count": len(results)})
		return
	}

	results, err := h.sheetService.ListSheets(r.Context(), limit, QueryInt(r, "offset", 0))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list sheets")
		WriteError(w, http.StatusInternalServerError, "failed to list sheets")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"sheets": results, "count": len(results)})
}

// GetHandler handles GET /api/sheets/{id}
func (h *SheetHandler) GetHandler(w http.ResponseWriter, r *http.Request, sheetID string) {
	sheet, err := h.sheetService.GetSheet(r.Context(), sheetID)
	if err != nil {
		if errors.Is(err, sheets.ErrSheetNotFound) {
			WriteError(w, http.StatusNotFound, "sheet not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "failed to get sheet")
		return
	}
	WriteJSON(w, http.StatusOK, sheet)
}

// UpdateHandler handles PATCH /api/sheets/{id} with the narrow
// auction-result update surface.
func (h *SheetHandler) UpdateHandler(w http.ResponseWriter, r *http.Request, sheetID string) {
	var update models.SheetUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sheet, err := h.sheetService.UpdateSheet(r.Context(), sheetID, &update)
	if err != nil {
		if errors.Is(err, sheets.ErrSheetNotFound) {
			WriteError(w, http.StatusNotFound, "sheet not found")
			return
		}
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, sheet)
}

// ImagesHandler handles GET /api/sheets/{id}/images
func (h *SheetHandler) ImagesHandler(w http.ResponseWriter, r *http.Request, sheetID string) {
	images, err := h.sheetService.GetSheetImages(r.Context(), sheetID)
	if err != nil {
		if errors.Is(err, sheets.ErrSheetNotFound) {
			WriteError(w, http.StatusNotFound, "sheet not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "failed to list images")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"images": images, "count": len(images)})
}
