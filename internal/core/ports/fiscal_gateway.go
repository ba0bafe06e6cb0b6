// internal/core/ports/fiscal_gateway.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallersoft/pos-be/internal/core/domain"
)

// FiscalRequest is the normalized invoice authorization request sent to the
// fiscal authority. The amounts carry the already-rounded bucket values so
// that what the authority accepts is exactly what gets persisted.
type FiscalRequest struct {
	SalesPoint        int                `json:"sales_point"`
	VoucherType       string             `json:"voucher_type"`
	Concept           int                `json:"concept"`
	BuyerDocType      string             `json:"buyer_doc_type"`
	BuyerDocNumber    string             `json:"buyer_doc_number"`
	BuyerTaxCondition string             `json:"buyer_tax_condition,omitempty"`
	TotalAmount       decimal.Decimal    `json:"total_amount"`
	NetAmount         decimal.Decimal    `json:"net_amount"`
	VatAmount         decimal.Decimal    `json:"vat_amount"`
	VatBreakdown      []domain.VatBucket `json:"vat_breakdown"`
	ServicePeriod     *ServicePeriod     `json:"service_period,omitempty"`
	DueDate           *time.Time         `json:"due_date,omitempty"`
	BranchID          uuid.UUID          `json:"branch_id"`
}

// FiscalAuthorization is the authority's proof that a voucher was authorized
type FiscalAuthorization struct {
	AuthorizationCode   string    `json:"authorization_code"`
	VoucherNumber       int64     `json:"voucher_number"`
	AuthorizationExpiry time.Time `json:"authorization_expiry"`
}

// FiscalGateway is the external fiscal authority. Authorize must complete,
// successfully or not, before any local mutation begins. Rejections come back
// as domain.FiscalRejectionError with the authority's reason untouched;
// deadline overruns as domain.ErrFiscalTimeout.
type FiscalGateway interface {
	Authorize(ctx context.Context, req FiscalRequest) (*FiscalAuthorization, error)
}
