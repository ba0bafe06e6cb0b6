// internal/core/services/settlement.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallersoft/pos-be/internal/core/domain"
	"github.com/tallersoft/pos-be/internal/core/ports"
)

const (
	idempotencyKeyPrefix   = "settle:idem:"
	billingEntityKeyPrefix = "branch:entity:"
)

// Params holds the tunables of the settlement pipeline
type Params struct {
	// DefaultVatRate applies to lines without an explicit rate
	DefaultVatRate decimal.Decimal
	// FiscalTimeout bounds the authorization call to the fiscal authority
	FiscalTimeout time.Duration
	// DefaultSalesPoint applies when the invoice request does not name one
	DefaultSalesPoint int
	// IdempotencyTTL is how long a used idempotency key blocks resubmission
	IdempotencyTTL time.Duration
	// BillingEntityTTL is how long a branch's billing entity stays cached
	BillingEntityTTL time.Duration
}

// SettlementService converts a cart into a committed sale: validation gate,
// tax breakdown, fiscal authorization, atomic commit, post-commit alerting.
type SettlementService struct {
	repo     ports.SettlementRepository
	sales    ports.SaleRepository
	fiscal   ports.FiscalGateway
	branches ports.BranchDirectory
	cache    ports.CacheRepository
	alerts   ports.AlertQueue
	params   Params
	logger   *slog.Logger
}

// Statically assert that *SettlementService implements the service port.
var _ ports.SettlementService = (*SettlementService)(nil)

// NewSettlementService creates a new settlement service
func NewSettlementService(
	repo ports.SettlementRepository,
	sales ports.SaleRepository,
	fiscal ports.FiscalGateway,
	branches ports.BranchDirectory,
	cache ports.CacheRepository,
	alerts ports.AlertQueue,
	params Params,
	logger *slog.Logger,
) *SettlementService {
	if params.FiscalTimeout <= 0 {
		params.FiscalTimeout = 30 * time.Second
	}
	if params.IdempotencyTTL <= 0 {
		params.IdempotencyTTL = 24 * time.Hour
	}
	if params.BillingEntityTTL <= 0 {
		params.BillingEntityTTL = time.Hour
	}
	return &SettlementService{
		repo:     repo,
		sales:    sales,
		fiscal:   fiscal,
		branches: branches,
		cache:    cache,
		alerts:   alerts,
		params:   params,
		logger:   logger.With(slog.String("service", "settlement")),
	}
}

// Settle validates the cart and payment split, authorizes the invoice when
// one was requested, commits every local mutation atomically and enqueues the
// price-override alert. Nothing is persisted until the fiscal authority has
// answered.
func (s *SettlementService) Settle(ctx context.Context, req ports.SettlementRequest) (result *ports.SettlementResult, err error) {
	payments, err := s.validate(&req)
	if err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" {
		release, err := s.reserveIdempotencyKey(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		// Release the key when the settlement fails so a corrected
		// resubmission is not locked out for the TTL.
		defer func() {
			if err != nil {
				release()
			}
		}()
	}

	breakdown := domain.ComputeTaxBreakdown(req.Lines, s.params.DefaultVatRate)

	sale := &domain.Sale{
		Total:    req.Total,
		VendorID: req.VendorID,
		BranchID: req.BranchID,
		Lines:    req.Lines,
		Payments: payments,
	}
	sale.PrepareForStorage()

	if req.Invoice != nil {
		invoice, err := s.authorizeInvoice(ctx, &req, breakdown)
		if err != nil {
			return nil, err
		}
		sale.Invoice = invoice
		sale.Invoice.SaleID = sale.ID
	}

	alert := domain.DetectPriceOverrides(sale)

	if err := s.repo.CommitSettlement(ctx, sale, alert); err != nil {
		if sale.Invoice != nil {
			// The authority already numbered this voucher; losing the local
			// record is a reconciliation hazard that needs operator attention.
			s.logger.ErrorContext(ctx, "settlement commit failed after fiscal authorization",
				slog.Bool("fiscal_orphan", true),
				slog.String("sale_number", sale.Number),
				slog.String("authorization_code", sale.Invoice.AuthorizationCode),
				slog.String("invoice_number", sale.Invoice.Number),
				slog.String("total", sale.Invoice.TotalAmount.StringFixed(2)),
				slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	s.logger.InfoContext(ctx, "sale settled",
		slog.String("sale_id", sale.ID.String()),
		slog.String("sale_number", sale.Number),
		slog.String("total", sale.Total.StringFixed(2)),
		slog.Int("lines", len(sale.Lines)),
		slog.Bool("invoiced", sale.Invoice != nil))

	// Best effort: the sale has already succeeded and must not be failed
	// for an audit side effect. The outbox row keeps the alert recoverable.
	if alert != nil {
		if err := s.alerts.EnqueuePriceAlert(ctx, alert.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to enqueue price alert",
				slog.String("alert_id", alert.ID.String()),
				slog.String("sale_number", sale.Number),
				slog.String("error", err.Error()))
		}
	}

	result = &ports.SettlementResult{SaleID: sale.ID, Number: sale.Number}
	if sale.Invoice != nil {
		result.Invoice = &ports.InvoiceResult{
			Number:              sale.Invoice.Number,
			AuthorizationCode:   sale.Invoice.AuthorizationCode,
			AuthorizationExpiry: sale.Invoice.AuthorizationExpiry,
		}
	}
	return result, nil
}

// validate is the pure gate stage: no side effects until it passes
func (s *SettlementService) validate(req *ports.SettlementRequest) ([]domain.PaymentEntry, error) {
	if len(req.Lines) == 0 {
		return nil, domain.EmptyCartError{}
	}
	for i := range req.Lines {
		if err := req.Lines[i].Validate(); err != nil {
			return nil, domain.InvalidLineError{Index: i, Name: req.Lines[i].Name, Err: err}
		}
	}

	if len(req.Splits) == 0 {
		method := req.Method
		if method == "" {
			method = domain.PaymentCash
		}
		return []domain.PaymentEntry{{Method: method, Amount: req.Total}}, nil
	}

	sum := domain.SumPayments(req.Splits)
	if sum.Sub(req.Total).Abs().GreaterThan(domain.PaymentTolerance) {
		return nil, domain.PaymentMismatchError{Declared: req.Total, Splits: sum}
	}
	return req.Splits, nil
}

func (s *SettlementService) reserveIdempotencyKey(ctx context.Context, key string) (release func(), err error) {
	cacheKey := idempotencyKeyPrefix + key
	ok, err := s.cache.SetNX(ctx, cacheKey, time.Now().Unix(), s.params.IdempotencyTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	if !ok {
		return nil, domain.ErrDuplicateSubmission
	}
	return func() {
		if delErr := s.cache.Delete(context.WithoutCancel(ctx), cacheKey); delErr != nil {
			s.logger.Warn("failed to release idempotency key",
				slog.String("key", key),
				slog.String("error", delErr.Error()))
		}
	}, nil
}

// authorizeInvoice calls the fiscal authority with the rounded bucket values
// and shapes its answer into the invoice row to persist. The persisted net,
// VAT and total come from the exact same buckets that were submitted.
func (s *SettlementService) authorizeInvoice(ctx context.Context, req *ports.SettlementRequest, breakdown domain.TaxBreakdown) (*domain.FiscalInvoice, error) {
	entity, err := s.billingEntity(ctx, req.BranchID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve billing entity for branch %s: %w", req.BranchID, err)
	}

	salesPoint := req.Invoice.SalesPoint
	if salesPoint == 0 {
		salesPoint = s.params.DefaultSalesPoint
	}

	fiscalReq := ports.FiscalRequest{
		SalesPoint:        salesPoint,
		VoucherType:       req.Invoice.Type,
		Concept:           req.Invoice.Concept,
		BuyerDocType:      req.Invoice.BuyerDocType,
		BuyerDocNumber:    req.Invoice.BuyerDocNumber,
		BuyerTaxCondition: req.Invoice.BuyerTaxCondition,
		TotalAmount:       breakdown.Total(),
		NetAmount:         breakdown.TotalNet,
		VatAmount:         breakdown.TotalVat,
		VatBreakdown:      breakdown.Buckets,
		ServicePeriod:     req.Invoice.ServicePeriod,
		DueDate:           req.Invoice.DueDate,
		BranchID:          req.BranchID,
	}

	authCtx, cancel := context.WithTimeout(ctx, s.params.FiscalTimeout)
	defer cancel()

	auth, err := s.fiscal.Authorize(authCtx, fiscalReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.ErrFiscalTimeout
		}
		return nil, err
	}

	return &domain.FiscalInvoice{
		Type:                req.Invoice.Type,
		Number:              domain.FormatInvoiceNumber(salesPoint, auth.VoucherNumber),
		AuthorizationCode:   auth.AuthorizationCode,
		AuthorizationExpiry: auth.AuthorizationExpiry,
		NetAmount:           breakdown.TotalNet,
		VatAmount:           breakdown.TotalVat,
		TotalAmount:         breakdown.Total(),
		CustomerDocType:     req.Invoice.BuyerDocType,
		CustomerDocNumber:   req.Invoice.BuyerDocNumber,
		BillingEntity:       entity,
	}, nil
}

func (s *SettlementService) billingEntity(ctx context.Context, branchID uuid.UUID) (string, error) {
	var entity string
	err := s.cache.GetOrSet(ctx, billingEntityKeyPrefix+branchID.String(), &entity,
		func() (interface{}, error) {
			return s.branches.BillingEntity(ctx, branchID)
		}, s.params.BillingEntityTTL)
	if err != nil {
		return "", err
	}
	return entity, nil
}

// SaleByID retrieves a settled sale with its items, payments and invoice
func (s *SettlementService) SaleByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	if sale == nil {
		return nil, fmt.Errorf("sale %s: %w", id, domain.ErrSaleNotFound)
	}
	return sale, nil
}

// Sales retrieves settled sales with filtering and pagination
func (s *SettlementService) Sales(ctx context.Context, params ports.SaleListParams) (*ports.SaleListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = 50
	}

	sales, totalCount, err := s.sales.FindAll(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}

	totalPages := int(totalCount) / params.PageSize
	if int(totalCount)%params.PageSize > 0 {
		totalPages++
	}

	return &ports.SaleListResult{
		Sales:      sales,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}, nil
}
