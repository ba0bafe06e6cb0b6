package fiscal_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallersoft/pos-be/internal/adapters/fiscal"
	"github.com/tallersoft/pos-be/internal/core/domain"
	"github.com/tallersoft/pos-be/internal/core/ports"
	"github.com/tallersoft/pos-be/test/helpers"
)

func fiscalRequest() ports.FiscalRequest {
	return ports.FiscalRequest{
		SalesPoint:     3,
		VoucherType:    "B",
		Concept:        1,
		BuyerDocType:   "DNI",
		BuyerDocNumber: "30123456",
		TotalAmount:    decimal.NewFromInt(2000),
		NetAmount:      decimal.RequireFromString("1652.89"),
		VatAmount:      decimal.RequireFromString("347.11"),
	}
}

func TestClient_Authorize(t *testing.T) {
	ctx := context.Background()

	t.Run("returns_the_authorization", func(t *testing.T) {
		expiry := time.Now().Add(10 * 24 * time.Hour).UTC().Truncate(time.Second)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/vouchers/authorize", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var req map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.EqualValues(t, 3, req["sales_point"])

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"cae":            "71234567890123",
				"voucher_number": 42,
				"cae_expiry":     expiry.Format(time.RFC3339),
				"result":         "A",
			})
		}))
		defer server.Close()

		client := fiscal.NewClient(server.URL, helpers.TestLogger())

		auth, err := client.Authorize(ctx, fiscalRequest())

		require.NoError(t, err)
		assert.Equal(t, "71234567890123", auth.AuthorizationCode)
		assert.Equal(t, int64(42), auth.VoucherNumber)
		assert.True(t, auth.AuthorizationExpiry.Equal(expiry))
	})

	t.Run("surfaces_rejection_reason_verbatim", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"code":    "10015",
				"message": "Documento del receptor invalido",
			})
		}))
		defer server.Close()

		client := fiscal.NewClient(server.URL, helpers.TestLogger())

		_, err := client.Authorize(ctx, fiscalRequest())

		var rejection domain.FiscalRejectionError
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, "Documento del receptor invalido", rejection.Reason)
	})

	t.Run("treats_in_band_refusal_as_rejection", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"result":       "R",
				"observations": "CUIT emisor sin actividad declarada",
			})
		}))
		defer server.Close()

		client := fiscal.NewClient(server.URL, helpers.TestLogger())

		_, err := client.Authorize(ctx, fiscalRequest())

		var rejection domain.FiscalRejectionError
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, "CUIT emisor sin actividad declarada", rejection.Reason)
	})

	t.Run("unparseable_5xx_is_not_a_rejection", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>gateway error</html>"))
		}))
		defer server.Close()

		client := fiscal.NewClient(server.URL, helpers.TestLogger())

		_, err := client.Authorize(ctx, fiscalRequest())

		require.Error(t, err)
		var rejection domain.FiscalRejectionError
		assert.False(t, errors.As(err, &rejection))
		assert.Contains(t, err.Error(), "status 502")
	})

	t.Run("context_deadline_propagates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Drain the body so the server notices the client disconnect
			// and cancels r.Context(); otherwise Close() deadlocks.
			_, _ = io.Copy(io.Discard, r.Body)
			<-r.Context().Done()
		}))
		defer server.Close()

		client := fiscal.NewClient(server.URL, helpers.TestLogger())

		deadlineCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		_, err := client.Authorize(deadlineCtx, fiscalRequest())

		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("missing_authorization_code_is_an_error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"result": "A"})
		}))
		defer server.Close()

		client := fiscal.NewClient(server.URL, helpers.TestLogger())

		_, err := client.Authorize(ctx, fiscalRequest())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no authorization code")
	})
}
