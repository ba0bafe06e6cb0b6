// internal/adapters/db/settlement_repository.go
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tallersoft/pos-be/internal/core/domain"
	"github.com/tallersoft/pos-be/internal/core/ports"
)

// upsertStockSQL applies the line's decrement as a single relative statement
// so that two concurrent settlements on the same stock row cannot lose an
// update. The balance may go negative.
const upsertStockSQL = `
	INSERT INTO stock (product_id, branch_id, quantity)
	VALUES ($1, $2, -$3)
	ON CONFLICT (product_id, branch_id)
	DO UPDATE SET quantity = stock.quantity - $3`

// settlementRepository implements ports.SettlementRepository
type settlementRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewSettlementRepository creates a new settlement repository
func NewSettlementRepository(db *Database, logger *slog.Logger) ports.SettlementRepository {
	return &settlementRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "settlement")),
	}
}

// CommitSettlement persists the whole settlement in one transaction: sale
// header, invoice, payments, sale items, stock decrements, ticket delivery
// and the alert outbox row. Any failure rolls everything back.
func (r *settlementRepository) CommitSettlement(ctx context.Context, sale *domain.Sale, alert *domain.PriceAlert) error {
	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		if err := insertSaleHeader(ctx, tx, sale); err != nil {
			return err
		}

		if sale.Invoice != nil {
			if err := insertInvoice(ctx, tx, sale.Invoice); err != nil {
				return err
			}
		}

		if err := insertPayments(ctx, tx, sale); err != nil {
			return err
		}

		for i := range sale.Lines {
			if err := r.applyLine(ctx, tx, sale, &sale.Lines[i]); err != nil {
				return fmt.Errorf("line %d (%s): %w", i, sale.Lines[i].Name, err)
			}
		}

		if alert != nil {
			if err := insertAlert(ctx, tx, alert); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	r.logger.DebugContext(ctx, "settlement committed",
		slog.String("sale_id", sale.ID.String()),
		slog.String("sale_number", sale.Number))

	return nil
}

func insertSaleHeader(ctx context.Context, tx pgx.Tx, sale *domain.Sale) error {
	query := `
		INSERT INTO sales (id, number, total, vendor_id, branch_id, payment_summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		sale.ID, sale.Number, sale.Total, sale.VendorID, sale.BranchID,
		sale.PaymentSummary, sale.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sale header: %w", err)
	}
	return nil
}

func insertInvoice(ctx context.Context, tx pgx.Tx, inv *domain.FiscalInvoice) error {
	query := `
		INSERT INTO invoices (
			sale_id, type, number, authorization_code, authorization_expiry,
			net_amount, vat_amount, total_amount,
			customer_doc_type, customer_doc_number, billing_entity
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := tx.Exec(ctx, query,
		inv.SaleID, inv.Type, inv.Number, inv.AuthorizationCode, inv.AuthorizationExpiry,
		inv.NetAmount, inv.VatAmount, inv.TotalAmount,
		inv.CustomerDocType, inv.CustomerDocNumber, inv.BillingEntity,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}
	return nil
}

func insertPayments(ctx context.Context, tx pgx.Tx, sale *domain.Sale) error {
	batch := &pgx.Batch{}
	query := `INSERT INTO sale_payments (id, sale_id, method, amount) VALUES ($1, $2, $3, $4)`

	for _, p := range sale.Payments {
		batch.Queue(query, uuid.New(), sale.ID, string(p.Method), p.Amount)
	}

	br := tx.SendBatch(ctx, batch)
	defer br.Close()

	for range sale.Payments {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}
	}
	return nil
}

// applyLine performs the per-line mutation: stock decrement for products,
// ticket delivery for repairs, plus the sale item row either way. The switch
// is exhaustive over domain.LineKind.
func (r *settlementRepository) applyLine(ctx context.Context, tx pgx.Tx, sale *domain.Sale, line *domain.CartLine) error {
	var productID, ticketID *uuid.UUID

	switch line.Kind {
	case domain.LineProduct:
		productID = &line.ReferenceID
		if _, err := tx.Exec(ctx, upsertStockSQL, line.ReferenceID, sale.BranchID, line.Quantity); err != nil {
			return fmt.Errorf("failed to adjust stock: %w", err)
		}

	case domain.LineRepair:
		ticketID = &line.ReferenceID
		tag, err := tx.Exec(ctx,
			`UPDATE tickets SET status_id = $2, updated_at = now() WHERE id = $1`,
			line.ReferenceID, domain.TicketStatusDelivered,
		)
		if err != nil {
			return fmt.Errorf("failed to deliver ticket: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s", domain.ErrTicketNotFound, line.ReferenceID)
		}

		note := fmt.Sprintf("Settled in sale %s for %s", sale.Number, line.UnitPrice.StringFixed(2))
		_, err = tx.Exec(ctx,
			`INSERT INTO ticket_notes (id, ticket_id, note, created_at) VALUES ($1, $2, $3, now())`,
			uuid.New(), line.ReferenceID, note,
		)
		if err != nil {
			return fmt.Errorf("failed to append ticket note: %w", err)
		}

	default:
		return fmt.Errorf("unhandled cart line kind %q", line.Kind)
	}

	query := `
		INSERT INTO sale_items (
			id, sale_id, kind, product_id, ticket_id,
			name, quantity, unit_price, original_price, price_change_reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := tx.Exec(ctx, query,
		uuid.New(), sale.ID, string(line.Kind), productID, ticketID,
		line.Name, line.Quantity, line.UnitPrice, line.OriginalPrice, nullableString(line.PriceChangeReason),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sale item: %w", err)
	}
	return nil
}

func insertAlert(ctx context.Context, tx pgx.Tx, alert *domain.PriceAlert) error {
	payload, err := json.Marshal(alert.Overrides)
	if err != nil {
		return fmt.Errorf("failed to marshal alert payload: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO sale_alerts (id, sale_id, sale_number, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		alert.ID, alert.SaleID, alert.SaleNumber, payload, alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert outbox row: %w", err)
	}
	return nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
