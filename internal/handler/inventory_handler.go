package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"atelier-store/internal/inventory"
	"atelier-store/internal/model"

	"github.com/rs/zerolog"
)

// InventoryHandler handles stock queries and manual decrements. The GET
// endpoint is advisory; only the PATCH path is authoritative.
type InventoryHandler struct {
	guard  inventory.Guard
	logger zerolog.Logger
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(guard inventory.Guard, logger zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{
		guard:  guard,
		logger: logger.With().Str("handler", "inventory").Logger(),
	}
}

// Handle routes GET and PATCH /api/inventory/{id} requests.
func (h *InventoryHandler) Handle(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimPrefix(r.URL.Path, "/api/inventory/")
	if productID == "" || strings.Contains(productID, "/") {
		writeError(w, http.StatusBadRequest, model.ErrCodeProductNotFound, "product ID is required", h.logger)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getStock(w, r, productID)
	case http.MethodPatch:
		h.decrement(w, r, productID)
	default:
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidJSON, "method not allowed", h.logger)
	}
}

func (h *InventoryHandler) getStock(w http.ResponseWriter, r *http.Request, productID string) {
	stock, err := h.guard.GetStock(r.Context(), productID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.StockLevel{ProductID: productID, Stock: stock})
}

func (h *InventoryHandler) decrement(w http.ResponseWriter, r *http.Request, productID string) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	remaining, err := h.guard.Decrement(r.Context(), productID, req.Quantity)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.StockLevel{ProductID: productID, Stock: remaining})
}
