// internal/core/domain/sale.go
package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineKind discriminates what a cart line references. The per-line switch in
// the settlement commit matches exhaustively on it, so adding a kind means
// touching every switch.
type LineKind string

const (
	LineProduct LineKind = "product"
	LineRepair  LineKind = "repair"
)

// PaymentMethod represents how a sale (or part of it) was paid
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentWallet PaymentMethod = "wallet"
	PaymentSplit  PaymentMethod = "split"
)

// TicketStatusDelivered is the terminal repair-ticket status a settlement
// transitions REPAIR lines into.
const TicketStatusDelivered = 6

// RoleSupervisor identifies the users that receive price-override alerts
const RoleSupervisor = "supervisor"

// priceEpsilon is the tolerance below which a price difference is not
// considered an override.
var priceEpsilon = decimal.NewFromFloat(0.01)

// PaymentTolerance is the maximum allowed gap between the declared sale total
// and the sum of its payment splits, absorbing rounding on the client side.
var PaymentTolerance = decimal.NewFromInt(1)

// CartLine is one entry in the cart, referencing either a stocked product or
// a repair ticket.
type CartLine struct {
	Kind              LineKind         `json:"kind"`
	ReferenceID       uuid.UUID        `json:"reference_id"`
	Quantity          int              `json:"quantity"`
	UnitPrice         decimal.Decimal  `json:"unit_price"`
	Name              string           `json:"name"`
	OriginalPrice     *decimal.Decimal `json:"original_price,omitempty"`
	PriceChangeReason string           `json:"price_change_reason,omitempty"`
	// VatRate overrides the sale-level VAT rate for reduced-rate goods;
	// nil means the default rate applies.
	VatRate *decimal.Decimal `json:"vat_rate,omitempty"`
}

// Validate performs domain validation on the cart line
func (l *CartLine) Validate() error {
	switch l.Kind {
	case LineProduct, LineRepair:
	default:
		return fmt.Errorf("unknown cart line kind %q", l.Kind)
	}
	if l.ReferenceID == uuid.Nil {
		return fmt.Errorf("reference_id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("name is required")
	}
	if l.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	// A repair ticket is a unique unit, not a stock-counted good
	if l.Kind == LineRepair && l.Quantity != 1 {
		return fmt.Errorf("repair lines must have quantity 1")
	}
	if l.UnitPrice.IsNegative() {
		return fmt.Errorf("unit_price cannot be negative")
	}
	return nil
}

// Total returns unit price times quantity
func (l CartLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// PriceOverridden reports whether the line was settled at a price different
// from its list price by more than the epsilon.
func (l CartLine) PriceOverridden() bool {
	if l.OriginalPrice == nil {
		return false
	}
	return l.OriginalPrice.Sub(l.UnitPrice).Abs().GreaterThan(priceEpsilon)
}

// PaymentEntry is one split of a sale's payment
type PaymentEntry struct {
	Method PaymentMethod   `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// SumPayments adds up a payment split list
func SumPayments(entries []PaymentEntry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// FiscalInvoice is the authority-authorized invoice attached 1:1 to a sale.
// Created at most once per sale, never mutated.
type FiscalInvoice struct {
	SaleID              uuid.UUID       `json:"sale_id"`
	Type                string          `json:"type"`
	Number              string          `json:"number"`
	AuthorizationCode   string          `json:"authorization_code"`
	AuthorizationExpiry time.Time       `json:"authorization_expiry"`
	NetAmount           decimal.Decimal `json:"net_amount"`
	VatAmount           decimal.Decimal `json:"vat_amount"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	CustomerDocType     string          `json:"customer_doc_type"`
	CustomerDocNumber   string          `json:"customer_doc_number"`
	BillingEntity       string          `json:"billing_entity"`
}

// FormatInvoiceNumber produces the externally displayed voucher number:
// sales point zero-padded to 5 digits, authority voucher number to 8,
// joined by a hyphen.
func FormatInvoiceNumber(salesPoint int, voucherNumber int64) string {
	return fmt.Sprintf("%05d-%08d", salesPoint, voucherNumber)
}

// Sale is a committed settlement: it owns its lines, payment entries and
// optional invoice.
type Sale struct {
	ID             uuid.UUID       `json:"id"`
	Number         string          `json:"number"`
	Total          decimal.Decimal `json:"total"`
	VendorID       uuid.UUID       `json:"vendor_id"`
	BranchID       uuid.UUID       `json:"branch_id"`
	PaymentSummary string          `json:"payment_summary"`
	CreatedAt      time.Time       `json:"created_at"`
	Lines          []CartLine      `json:"lines"`
	Payments       []PaymentEntry  `json:"payments"`
	Invoice        *FiscalInvoice  `json:"invoice,omitempty"`
}

// NewSaleNumber generates a human-readable sale number: timestamp plus a
// random hex suffix. Uniqueness is not strictly enforced beyond low collision
// probability; the DB column is UNIQUE so a collision fails the transaction
// instead of silently reusing a number.
func NewSaleNumber(now time.Time) string {
	suffix := make([]byte, 2)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("%s-%s", now.Format("20060102150405"), strings.ToUpper(hex.EncodeToString(suffix)))
}

// SummarizePayments derives the stored payment-method summary for a sale
func SummarizePayments(entries []PaymentEntry) string {
	if len(entries) == 1 {
		return string(entries[0].Method)
	}
	return string(PaymentSplit)
}

// PrepareForStorage fills in generated fields before the sale is persisted
func (s *Sale) PrepareForStorage() {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	if s.Number == "" {
		s.Number = NewSaleNumber(s.CreatedAt)
	}
	if s.PaymentSummary == "" {
		s.PaymentSummary = SummarizePayments(s.Payments)
	}
	if s.Invoice != nil {
		s.Invoice.SaleID = s.ID
	}
}
