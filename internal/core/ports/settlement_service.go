// internal/core/ports/settlement_service.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallersoft/pos-be/internal/core/domain"
)

// SettlementService defines the application service port for the settlement
// engine. This interface is implemented by the application service.
type SettlementService interface {
	Settle(ctx context.Context, req SettlementRequest) (*SettlementResult, error)
	SaleByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error)
	Sales(ctx context.Context, params SaleListParams) (*SaleListResult, error)
}

// ServicePeriod bounds the period a service-concept invoice covers
type ServicePeriod struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// InvoiceDetails is the optional fiscal-invoice request block of a settlement
type InvoiceDetails struct {
	SalesPoint        int            `json:"sales_point"`
	Type              string         `json:"type"`
	Concept           int            `json:"concept"`
	BuyerDocType      string         `json:"buyer_doc_type"`
	BuyerDocNumber    string         `json:"buyer_doc_number"`
	BuyerName         string         `json:"buyer_name"`
	BuyerAddress      string         `json:"buyer_address,omitempty"`
	BuyerTaxCondition string         `json:"buyer_tax_condition,omitempty"`
	ServicePeriod     *ServicePeriod `json:"service_period,omitempty"`
	DueDate           *time.Time     `json:"due_date,omitempty"`
}

// SettlementRequest is the input to Settle. When Splits is empty a single
// synthetic entry of Method for the full total is assumed.
type SettlementRequest struct {
	VendorID       uuid.UUID             `json:"vendor_id"`
	BranchID       uuid.UUID             `json:"branch_id"`
	Lines          []domain.CartLine     `json:"lines"`
	Total          decimal.Decimal       `json:"total"`
	Method         domain.PaymentMethod  `json:"method,omitempty"`
	Splits         []domain.PaymentEntry `json:"splits,omitempty"`
	Invoice        *InvoiceDetails       `json:"invoice,omitempty"`
	IdempotencyKey string                `json:"-"`
}

// InvoiceResult is the caller-facing slice of an authorized invoice
type InvoiceResult struct {
	Number              string    `json:"number"`
	AuthorizationCode   string    `json:"authorization_code"`
	AuthorizationExpiry time.Time `json:"authorization_expiry"`
}

// SettlementResult identifies the committed sale
type SettlementResult struct {
	SaleID  uuid.UUID      `json:"sale_id"`
	Number  string         `json:"number"`
	Invoice *InvoiceResult `json:"invoice,omitempty"`
}

// SaleListParams holds filters for listing sales
type SaleListParams struct {
	BranchID *uuid.UUID
	VendorID *uuid.UUID
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// SaleListResult holds a page of sales
type SaleListResult struct {
	Sales      []*domain.Sale `json:"sales"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalCount int64          `json:"total_count"`
	TotalPages int            `json:"total_pages"`
}
