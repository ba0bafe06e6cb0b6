// internal/adapters/db/sale_repository.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tallersoft/pos-be/internal/core/domain"
	"github.com/tallersoft/pos-be/internal/core/ports"
)

// saleRepository implements ports.SaleRepository
type saleRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewSaleRepository creates a new sale read repository
func NewSaleRepository(db *Database, logger *slog.Logger) ports.SaleRepository {
	return &saleRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "sale")),
	}
}

// FindByID retrieves a sale with its items, payments and invoice
func (r *saleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	return r.findOne(ctx, "id = $1", id)
}

// FindByNumber retrieves a sale by its human-readable number
func (r *saleRepository) FindByNumber(ctx context.Context, number string) (*domain.Sale, error) {
	return r.findOne(ctx, "number = $1", number)
}

func (r *saleRepository) findOne(ctx context.Context, where string, arg interface{}) (*domain.Sale, error) {
	query := `
		SELECT id, number, total, vendor_id, branch_id, payment_summary, created_at
		FROM sales WHERE ` + where

	sale := &domain.Sale{}
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&sale.ID, &sale.Number, &sale.Total, &sale.VendorID, &sale.BranchID,
		&sale.PaymentSummary, &sale.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find sale: %w", err)
	}

	if err := r.loadLines(ctx, sale); err != nil {
		return nil, err
	}
	if err := r.loadPayments(ctx, sale); err != nil {
		return nil, err
	}
	if err := r.loadInvoice(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

func (r *saleRepository) loadLines(ctx context.Context, sale *domain.Sale) error {
	query := `
		SELECT kind, product_id, ticket_id, name, quantity, unit_price,
		       original_price, price_change_reason
		FROM sale_items WHERE sale_id = $1 ORDER BY name`

	rows, err := r.db.Query(ctx, query, sale.ID)
	if err != nil {
		return fmt.Errorf("failed to query sale items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.CartLine
		var productID, ticketID *uuid.UUID
		var reason sql.NullString

		err := rows.Scan(&line.Kind, &productID, &ticketID, &line.Name,
			&line.Quantity, &line.UnitPrice, &line.OriginalPrice, &reason)
		if err != nil {
			return fmt.Errorf("failed to scan sale item: %w", err)
		}

		switch line.Kind {
		case domain.LineProduct:
			if productID != nil {
				line.ReferenceID = *productID
			}
		case domain.LineRepair:
			if ticketID != nil {
				line.ReferenceID = *ticketID
			}
		}
		line.PriceChangeReason = reason.String
		sale.Lines = append(sale.Lines, line)
	}
	return rows.Err()
}

func (r *saleRepository) loadPayments(ctx context.Context, sale *domain.Sale) error {
	rows, err := r.db.Query(ctx,
		`SELECT method, amount FROM sale_payments WHERE sale_id = $1`, sale.ID)
	if err != nil {
		return fmt.Errorf("failed to query sale payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.PaymentEntry
		if err := rows.Scan(&p.Method, &p.Amount); err != nil {
			return fmt.Errorf("failed to scan payment: %w", err)
		}
		sale.Payments = append(sale.Payments, p)
	}
	return rows.Err()
}

func (r *saleRepository) loadInvoice(ctx context.Context, sale *domain.Sale) error {
	query := `
		SELECT sale_id, type, number, authorization_code, authorization_expiry,
		       net_amount, vat_amount, total_amount,
		       customer_doc_type, customer_doc_number, billing_entity
		FROM invoices WHERE sale_id = $1`

	inv := &domain.FiscalInvoice{}
	err := r.db.QueryRow(ctx, query, sale.ID).Scan(
		&inv.SaleID, &inv.Type, &inv.Number, &inv.AuthorizationCode, &inv.AuthorizationExpiry,
		&inv.NetAmount, &inv.VatAmount, &inv.TotalAmount,
		&inv.CustomerDocType, &inv.CustomerDocNumber, &inv.BillingEntity,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil
		}
		return fmt.Errorf("failed to query invoice: %w", err)
	}
	sale.Invoice = inv
	return nil
}

// FindAll retrieves sale headers with filtering and pagination
func (r *saleRepository) FindAll(ctx context.Context, params ports.SaleListParams) ([]*domain.Sale, int64, error) {
	filter := func(qb squirrel.SelectBuilder) squirrel.SelectBuilder {
		if params.BranchID != nil {
			qb = qb.Where(squirrel.Eq{"branch_id": *params.BranchID})
		}
		if params.VendorID != nil {
			qb = qb.Where(squirrel.Eq{"vendor_id": *params.VendorID})
		}
		if params.From != nil {
			qb = qb.Where(squirrel.GtOrEq{"created_at": *params.From})
		}
		if params.To != nil {
			qb = qb.Where(squirrel.Lt{"created_at": *params.To})
		}
		return qb
	}

	countSQL, countArgs, err := filter(squirrel.Select("COUNT(*)").From("sales").
		PlaceholderFormat(squirrel.Dollar)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count sales: %w", err)
	}

	qb := filter(squirrel.Select("id", "number", "total", "vendor_id", "branch_id",
		"payment_summary", "created_at").
		From("sales").
		PlaceholderFormat(squirrel.Dollar))

	qb = qb.OrderBy("created_at DESC")
	if params.PageSize > 0 {
		qb = qb.Limit(uint64(params.PageSize))
		if params.Page > 1 {
			qb = qb.Offset(uint64((params.Page - 1) * params.PageSize))
		}
	}

	listSQL, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var sales []*domain.Sale
	for rows.Next() {
		sale := &domain.Sale{}
		err := rows.Scan(&sale.ID, &sale.Number, &sale.Total, &sale.VendorID,
			&sale.BranchID, &sale.PaymentSummary, &sale.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return sales, totalCount, nil
}
