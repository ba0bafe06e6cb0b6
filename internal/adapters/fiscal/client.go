// internal/adapters/fiscal/client.go
package fiscal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tallersoft/pos-be/internal/core/domain"
	"github.com/tallersoft/pos-be/internal/core/ports"
)

const authorizePath = "/v1/vouchers/authorize"

// Client talks to the fiscal authority's electronic invoicing endpoint.
// It implements ports.FiscalGateway. Deadlines are driven entirely by the
// caller's context; the embedded http.Client carries no timeout of its own
// so that a single context bound governs the whole exchange.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// rejectionResponse is the authority's error envelope. The reason is kept
// verbatim for operator-facing surfaces.
type rejectionResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type authorizationResponse struct {
	AuthorizationCode   string    `json:"cae"`
	VoucherNumber       int64     `json:"voucher_number"`
	AuthorizationExpiry time.Time `json:"cae_expiry"`
	Result              string    `json:"result"`
	Observations        string    `json:"observations"`
}

// NewClient creates a fiscal authority client
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		logger: logger.With(slog.String("adapter", "fiscal")),
	}
}

// Authorize submits the voucher for authorization. A non-2xx answer from the
// authority becomes a domain.FiscalRejectionError carrying the authority's
// message untouched. Transport failures and context expiry propagate as-is so
// callers can distinguish timeouts from rejections.
func (c *Client) Authorize(ctx context.Context, req ports.FiscalRequest) (*ports.FiscalAuthorization, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode authorization request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+authorizePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build authorization request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fiscal authority unreachable: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read fiscal authority response: %w", err)
	}

	c.logger.DebugContext(ctx, "fiscal authorization exchange",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
		slog.Int("sales_point", req.SalesPoint))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.rejectionError(resp.StatusCode, respBody)
	}

	var auth authorizationResponse
	if err := json.Unmarshal(respBody, &auth); err != nil {
		return nil, fmt.Errorf("failed to decode fiscal authority response: %w", err)
	}

	// Some authorities answer 200 with an in-band rejection
	if auth.Result != "" && !strings.EqualFold(auth.Result, "A") {
		reason := auth.Observations
		if reason == "" {
			reason = fmt.Sprintf("voucher rejected with result %q", auth.Result)
		}
		return nil, domain.FiscalRejectionError{Reason: reason}
	}

	if auth.AuthorizationCode == "" {
		return nil, fmt.Errorf("fiscal authority returned no authorization code")
	}

	return &ports.FiscalAuthorization{
		AuthorizationCode:   auth.AuthorizationCode,
		VoucherNumber:       auth.VoucherNumber,
		AuthorizationExpiry: auth.AuthorizationExpiry,
	}, nil
}

func (c *Client) rejectionError(status int, body []byte) error {
	var rejection rejectionResponse
	if err := json.Unmarshal(body, &rejection); err == nil && rejection.Message != "" {
		return domain.FiscalRejectionError{Reason: rejection.Message}
	}

	// 5xx with no parseable envelope means the authority itself is broken,
	// not that it refused the voucher
	if status >= 500 {
		return fmt.Errorf("fiscal authority error: status %d: %s", status, strings.TrimSpace(string(body)))
	}

	reason := strings.TrimSpace(string(body))
	if reason == "" {
		reason = fmt.Sprintf("authorization refused with status %d", status)
	}
	return domain.FiscalRejectionError{Reason: reason}
}
