// internal/handlers/stock.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/tallersoft/pos-be/internal/core/ports"
)

// StockHandler handles stock ledger HTTP requests
type StockHandler struct {
	stock  ports.StockRepository
	logger *slog.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(stock ports.StockRepository, logger *slog.Logger) *StockHandler {
	return &StockHandler{
		stock:  stock,
		logger: logger.With(slog.String("handler", "stock")),
	}
}

// AdjustStockRequest is the body of a manual stock adjustment
type AdjustStockRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	BranchID  uuid.UUID `json:"branch_id"`
	Delta     int       `json:"delta"`
}

// ListStock handles GET /api/v1/stock
func (h *StockHandler) ListStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := ports.StockQueryParams{Limit: 100}
	q := r.URL.Query()

	if v := q.Get("branch_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid branch_id")
			return
		}
		params.BranchID = &id
	}
	if v := q.Get("product_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid product_id")
			return
		}
		params.ProductID = &id
	}
	if v := q.Get("negative"); v != "" {
		params.Negative, _ = strconv.ParseBool(v)
	}
	if v := q.Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 && limit <= 1000 {
			params.Limit = limit
		}
	}
	if v := q.Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset >= 0 {
			params.Offset = offset
		}
	}

	entries, err := h.stock.FindAll(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list stock",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to list stock")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

// GetStock handles GET /api/v1/stock/{product_id}/{branch_id}
func (h *StockHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := uuid.Parse(r.PathValue("product_id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}
	branchID, err := uuid.Parse(r.PathValue("branch_id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid branch ID format")
		return
	}

	quantity, found, err := h.stock.Quantity(ctx, productID, branchID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get stock quantity",
			slog.String("product_id", productID.String()),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve stock")
		return
	}
	if !found {
		h.respondError(w, http.StatusNotFound, "No stock entry for product at branch")
		return
	}

	h.respondJSON(w, http.StatusOK, ports.StockEntry{
		ProductID: productID,
		BranchID:  branchID,
		Quantity:  quantity,
	})
}

// AdjustStock handles POST /api/v1/stock/adjustments
func (h *StockHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ProductID == uuid.Nil || req.BranchID == uuid.Nil {
		h.respondError(w, http.StatusBadRequest, "product_id and branch_id are required")
		return
	}
	if req.Delta == 0 {
		h.respondError(w, http.StatusBadRequest, "delta must be non-zero")
		return
	}

	balance, err := h.stock.Adjust(ctx, req.ProductID, req.BranchID, req.Delta)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to adjust stock",
			slog.String("product_id", req.ProductID.String()),
			slog.Int("delta", req.Delta),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to adjust stock")
		return
	}

	h.logger.InfoContext(ctx, "stock adjusted",
		slog.String("product_id", req.ProductID.String()),
		slog.String("branch_id", req.BranchID.String()),
		slog.Int("delta", req.Delta),
		slog.Int("balance", balance))

	h.respondJSON(w, http.StatusOK, ports.StockEntry{
		ProductID: req.ProductID,
		BranchID:  req.BranchID,
		Quantity:  balance,
	})
}

func (h *StockHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (h *StockHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
