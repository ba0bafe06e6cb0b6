// internal/handlers/settlement.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tallersoft/pos-be/internal/core/domain"
	"github.com/tallersoft/pos-be/internal/core/ports"
)

// SettlementHandler handles sale settlement HTTP requests
type SettlementHandler struct {
	service ports.SettlementService
	logger  *slog.Logger
}

// NewSettlementHandler creates a new settlement handler
func NewSettlementHandler(service ports.SettlementService, logger *slog.Logger) *SettlementHandler {
	return &SettlementHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "settlement")),
	}
}

// SettleSale handles POST /api/v1/sales
func (h *SettlementHandler) SettleSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ports.SettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.IdempotencyKey = r.Header.Get("Idempotency-Key")

	if req.VendorID == uuid.Nil || req.BranchID == uuid.Nil {
		h.respondError(w, http.StatusBadRequest, "vendor_id and branch_id are required")
		return
	}

	result, err := h.service.Settle(ctx, req)
	if err != nil {
		h.respondSettleError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, result)
}

// respondSettleError maps settlement failures onto HTTP statuses. Fiscal
// rejections pass the authority's reason through untouched so the cashier
// sees what the authority said.
func (h *SettlementHandler) respondSettleError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	var emptyCart domain.EmptyCartError
	var mismatch domain.PaymentMismatchError
	var invalidLine domain.InvalidLineError
	var rejection domain.FiscalRejectionError

	switch {
	case errors.As(err, &emptyCart), errors.As(err, &mismatch),
		errors.As(err, &invalidLine), errors.Is(err, domain.ErrTicketNotFound):
		h.respondError(w, http.StatusUnprocessableEntity, err.Error())

	case errors.As(err, &rejection):
		h.logger.WarnContext(ctx, "fiscal authority rejected sale",
			slog.String("reason", rejection.Reason))
		h.respondError(w, http.StatusBadGateway, rejection.Reason)

	case errors.Is(err, domain.ErrFiscalTimeout):
		h.logger.ErrorContext(ctx, "fiscal authorization timed out")
		h.respondError(w, http.StatusGatewayTimeout, "Fiscal authorization timed out")

	case errors.Is(err, domain.ErrDuplicateSubmission):
		h.respondError(w, http.StatusConflict, "Sale already submitted")

	default:
		h.logger.ErrorContext(ctx, "failed to settle sale",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to settle sale")
	}
}

// GetSale handles GET /api/v1/sales/{id}
func (h *SettlementHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	saleID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid sale ID format")
		return
	}

	sale, err := h.service.SaleByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, domain.ErrSaleNotFound) {
			h.respondError(w, http.StatusNotFound, "Sale not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get sale",
			slog.String("sale_id", saleID.String()),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve sale")
		return
	}

	h.respondJSON(w, http.StatusOK, sale)
}

// ListSales handles GET /api/v1/sales
func (h *SettlementHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := h.parseListParams(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Sales(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list sales",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to list sales")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

func (h *SettlementHandler) parseListParams(r *http.Request) (ports.SaleListParams, error) {
	params := ports.SaleListParams{
		Page:     1,
		PageSize: 50,
	}

	q := r.URL.Query()

	if v := q.Get("branch_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return params, errors.New("invalid branch_id")
		}
		params.BranchID = &id
	}
	if v := q.Get("vendor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return params, errors.New("invalid vendor_id")
		}
		params.VendorID = &id
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return params, errors.New("invalid from timestamp, expected RFC3339")
		}
		params.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return params, errors.New("invalid to timestamp, expected RFC3339")
		}
		params.To = &t
	}
	if v := q.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page > 0 {
			params.Page = page
		}
	}
	if v := q.Get("page_size"); v != "" {
		if size, err := strconv.Atoi(v); err == nil && size > 0 && size <= 500 {
			params.PageSize = size
		}
	}

	return params, nil
}

func (h *SettlementHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (h *SettlementHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
