package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tallersoft/pos-be/internal/core/ports"
	"github.com/tallersoft/pos-be/internal/handlers"
	"github.com/tallersoft/pos-be/test/helpers"
	"github.com/tallersoft/pos-be/test/mocks"
)

func newStockRouter(t *testing.T) (*http.ServeMux, *mocks.MockStockRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	stock := mocks.NewMockStockRepository(ctrl)
	handler := handlers.NewStockHandler(stock, helpers.TestLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/stock", handler.ListStock)
	mux.HandleFunc("GET /api/v1/stock/{product_id}/{branch_id}", handler.GetStock)
	mux.HandleFunc("POST /api/v1/stock/adjustments", handler.AdjustStock)
	return mux, stock
}

func TestStockHandler_GetStock(t *testing.T) {
	t.Run("returns_the_balance", func(t *testing.T) {
		mux, stock := newStockRouter(t)
		productID, branchID := uuid.New(), uuid.New()
		stock.EXPECT().Quantity(gomock.Any(), productID, branchID).Return(7, true, nil)

		req := httptest.NewRequest(http.MethodGet,
			"/api/v1/stock/"+productID.String()+"/"+branchID.String(), nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var entry ports.StockEntry
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&entry))
		assert.Equal(t, 7, entry.Quantity)
		assert.Equal(t, productID, entry.ProductID)
	})

	t.Run("missing_entry_is_404", func(t *testing.T) {
		mux, stock := newStockRouter(t)
		productID, branchID := uuid.New(), uuid.New()
		stock.EXPECT().Quantity(gomock.Any(), productID, branchID).Return(0, false, nil)

		req := httptest.NewRequest(http.MethodGet,
			"/api/v1/stock/"+productID.String()+"/"+branchID.String(), nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("rejects_malformed_ids", func(t *testing.T) {
		mux, _ := newStockRouter(t)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/stock/abc/def", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStockHandler_ListStock(t *testing.T) {
	t.Run("forwards_filters", func(t *testing.T) {
		mux, stock := newStockRouter(t)
		branchID := uuid.New()
		stock.EXPECT().
			FindAll(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params ports.StockQueryParams) ([]ports.StockEntry, error) {
				require.NotNil(t, params.BranchID)
				assert.Equal(t, branchID, *params.BranchID)
				assert.True(t, params.Negative)
				assert.Equal(t, 10, params.Limit)
				return []ports.StockEntry{
					{ProductID: uuid.New(), BranchID: branchID, Quantity: -2},
				}, nil
			})

		url := "/api/v1/stock?branch_id=" + branchID.String() + "&negative=true&limit=10"
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"count":1`)
	})

	t.Run("repository_failure_is_500", func(t *testing.T) {
		mux, stock := newStockRouter(t)
		stock.EXPECT().FindAll(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("connection refused"))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/stock", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestStockHandler_AdjustStock(t *testing.T) {
	t.Run("applies_the_delta_and_returns_the_balance", func(t *testing.T) {
		mux, stock := newStockRouter(t)
		productID, branchID := uuid.New(), uuid.New()
		stock.EXPECT().Adjust(gomock.Any(), productID, branchID, 5).Return(12, nil)

		body, _ := json.Marshal(handlers.AdjustStockRequest{
			ProductID: productID,
			BranchID:  branchID,
			Delta:     5,
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/adjustments", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var entry ports.StockEntry
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&entry))
		assert.Equal(t, 12, entry.Quantity)
	})

	t.Run("rejects_zero_delta", func(t *testing.T) {
		mux, _ := newStockRouter(t)

		body, _ := json.Marshal(handlers.AdjustStockRequest{
			ProductID: uuid.New(),
			BranchID:  uuid.New(),
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/adjustments", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "delta must be non-zero")
	})

	t.Run("rejects_missing_ids", func(t *testing.T) {
		mux, _ := newStockRouter(t)

		body, _ := json.Marshal(handlers.AdjustStockRequest{Delta: 3})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/adjustments", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
