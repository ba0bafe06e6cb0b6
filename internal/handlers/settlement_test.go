package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tallersoft/pos-be/internal/core/domain"
	"github.com/tallersoft/pos-be/internal/core/ports"
	"github.com/tallersoft/pos-be/internal/handlers"
	"github.com/tallersoft/pos-be/test/helpers"
	"github.com/tallersoft/pos-be/test/mocks"
)

func newSettlementRouter(t *testing.T) (*http.ServeMux, *mocks.MockSettlementService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	service := mocks.NewMockSettlementService(ctrl)
	handler := handlers.NewSettlementHandler(service, helpers.TestLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/sales", handler.SettleSale)
	mux.HandleFunc("GET /api/v1/sales", handler.ListSales)
	mux.HandleFunc("GET /api/v1/sales/{id}", handler.GetSale)
	return mux, service
}

func settleBody(t *testing.T) []byte {
	t.Helper()
	req := helpers.SettlementRequest(helpers.ProductLine(helpers.WithUnitPrice("2000")))
	body, err := json.Marshal(req)
	require.NoError(t, err)
	return body
}

func TestSettlementHandler_SettleSale(t *testing.T) {
	t.Run("returns_201_with_the_result", func(t *testing.T) {
		mux, service := newSettlementRouter(t)
		result := &ports.SettlementResult{
			SaleID: uuid.New(),
			Number: "20250314150926-AB12",
		}
		service.EXPECT().Settle(gomock.Any(), gomock.Any()).Return(result, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", bytes.NewReader(settleBody(t)))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var got ports.SettlementResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, result.SaleID, got.SaleID)
		assert.Equal(t, result.Number, got.Number)
	})

	t.Run("passes_the_idempotency_key_header", func(t *testing.T) {
		mux, service := newSettlementRouter(t)
		service.EXPECT().
			Settle(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req ports.SettlementRequest) (*ports.SettlementResult, error) {
				assert.Equal(t, "term1-555", req.IdempotencyKey)
				return &ports.SettlementResult{SaleID: uuid.New()}, nil
			})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", bytes.NewReader(settleBody(t)))
		req.Header.Set("Idempotency-Key", "term1-555")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("rejects_malformed_body", func(t *testing.T) {
		mux, _ := newSettlementRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects_missing_vendor_and_branch", func(t *testing.T) {
		mux, _ := newSettlementRouter(t)

		body, _ := json.Marshal(map[string]interface{}{"total": "100"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps_settlement_errors_onto_statuses", func(t *testing.T) {
		tests := []struct {
			name       string
			err        error
			wantStatus int
			wantBody   string
		}{
			{
				name:       "empty_cart",
				err:        domain.EmptyCartError{},
				wantStatus: http.StatusUnprocessableEntity,
				wantBody:   "cart must contain at least one line",
			},
			{
				name: "payment_mismatch",
				err: domain.PaymentMismatchError{
					Declared: decimal.NewFromInt(1000),
					Splits:   decimal.NewFromInt(990),
				},
				wantStatus: http.StatusUnprocessableEntity,
				wantBody:   "does not match declared total",
			},
			{
				name: "invalid_line",
				err: domain.InvalidLineError{
					Index: 1,
					Name:  "Screen replacement",
					Err:   errors.New("repair lines must have quantity 1"),
				},
				wantStatus: http.StatusUnprocessableEntity,
				wantBody:   "invalid cart line 1",
			},
			{
				name:       "ticket_not_found",
				err:        fmt.Errorf("failed to commit settlement: %w", domain.ErrTicketNotFound),
				wantStatus: http.StatusUnprocessableEntity,
				wantBody:   "repair ticket not found",
			},
			{
				name:       "fiscal_rejection_reason_passes_through",
				err:        domain.FiscalRejectionError{Reason: "Documento del receptor invalido"},
				wantStatus: http.StatusBadGateway,
				wantBody:   "Documento del receptor invalido",
			},
			{
				name:       "fiscal_timeout",
				err:        domain.ErrFiscalTimeout,
				wantStatus: http.StatusGatewayTimeout,
				wantBody:   "Fiscal authorization timed out",
			},
			{
				name:       "duplicate_submission",
				err:        domain.ErrDuplicateSubmission,
				wantStatus: http.StatusConflict,
				wantBody:   "Sale already submitted",
			},
			{
				name:       "unexpected_error",
				err:        errors.New("deadlock detected"),
				wantStatus: http.StatusInternalServerError,
				wantBody:   "Failed to settle sale",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				mux, service := newSettlementRouter(t)
				service.EXPECT().Settle(gomock.Any(), gomock.Any()).Return(nil, tt.err)

				req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", bytes.NewReader(settleBody(t)))
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, req)

				assert.Equal(t, tt.wantStatus, rec.Code)
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			})
		}
	})
}

func TestSettlementHandler_GetSale(t *testing.T) {
	t.Run("returns_the_sale", func(t *testing.T) {
		mux, service := newSettlementRouter(t)
		id := uuid.New()
		service.EXPECT().SaleByID(gomock.Any(), id).
			Return(&domain.Sale{ID: id, Number: "20250314150926-AB12"}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales/"+id.String(), nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got domain.Sale
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, id, got.ID)
	})

	t.Run("missing_sale_is_a_404", func(t *testing.T) {
		mux, service := newSettlementRouter(t)
		id := uuid.New()
		service.EXPECT().SaleByID(gomock.Any(), id).
			Return(nil, fmt.Errorf("sale %s: %w", id, domain.ErrSaleNotFound))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales/"+id.String(), nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Sale not found")
	})

	t.Run("lookup_failure_is_a_500", func(t *testing.T) {
		mux, service := newSettlementRouter(t)
		id := uuid.New()
		service.EXPECT().SaleByID(gomock.Any(), id).
			Return(nil, errors.New("connection refused"))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales/"+id.String(), nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("rejects_malformed_id", func(t *testing.T) {
		mux, _ := newSettlementRouter(t)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSettlementHandler_ListSales(t *testing.T) {
	t.Run("forwards_filters_and_pagination", func(t *testing.T) {
		mux, service := newSettlementRouter(t)
		branchID := uuid.New()
		service.EXPECT().
			Sales(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params ports.SaleListParams) (*ports.SaleListResult, error) {
				require.NotNil(t, params.BranchID)
				assert.Equal(t, branchID, *params.BranchID)
				assert.Equal(t, 2, params.Page)
				assert.Equal(t, 25, params.PageSize)
				require.NotNil(t, params.From)
				return &ports.SaleListResult{Page: 2, PageSize: 25}, nil
			})

		url := "/api/v1/sales?branch_id=" + branchID.String() +
			"&from=2025-03-01T00:00:00Z&page=2&page_size=25"
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects_bad_timestamp", func(t *testing.T) {
		mux, _ := newSettlementRouter(t)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales?from=yesterday", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "RFC3339")
	})

	t.Run("caps_oversized_page_size", func(t *testing.T) {
		mux, service := newSettlementRouter(t)
		service.EXPECT().
			Sales(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params ports.SaleListParams) (*ports.SaleListResult, error) {
				assert.Equal(t, 50, params.PageSize)
				return &ports.SaleListResult{}, nil
			})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales?page_size=10000", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
