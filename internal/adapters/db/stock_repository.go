// internal/adapters/db/stock_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tallersoft/pos-be/internal/core/ports"
)

// stockRepository implements ports.StockRepository
type stockRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewStockRepository creates a new stock repository
func NewStockRepository(db *Database, logger *slog.Logger) ports.StockRepository {
	return &stockRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "stock")),
	}
}

// Quantity returns the current balance for (product, branch). The second
// return value reports whether a row exists at all.
func (r *stockRepository) Quantity(ctx context.Context, productID, branchID uuid.UUID) (int, bool, error) {
	var qty int
	err := r.db.QueryRow(ctx,
		`SELECT quantity FROM stock WHERE product_id = $1 AND branch_id = $2`,
		productID, branchID,
	).Scan(&qty)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to read stock: %w", err)
	}
	return qty, true, nil
}

// Adjust applies a relative delta in a single statement and returns the new
// balance. Creates the row when absent; the balance may go negative.
func (r *stockRepository) Adjust(ctx context.Context, productID, branchID uuid.UUID, delta int) (int, error) {
	var qty int
	err := r.db.QueryRow(ctx, `
		INSERT INTO stock (product_id, branch_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id, branch_id)
		DO UPDATE SET quantity = stock.quantity + $3
		RETURNING quantity`,
		productID, branchID, delta,
	).Scan(&qty)
	if err != nil {
		return 0, fmt.Errorf("failed to adjust stock: %w", err)
	}

	r.logger.DebugContext(ctx, "stock adjusted",
		slog.String("product_id", productID.String()),
		slog.String("branch_id", branchID.String()),
		slog.Int("delta", delta),
		slog.Int("quantity", qty))

	return qty, nil
}

// FindAll retrieves stock entries with filtering
func (r *stockRepository) FindAll(ctx context.Context, params ports.StockQueryParams) ([]ports.StockEntry, error) {
	qb := squirrel.Select("product_id", "branch_id", "quantity").
		From("stock").
		PlaceholderFormat(squirrel.Dollar)

	if params.BranchID != nil {
		qb = qb.Where(squirrel.Eq{"branch_id": *params.BranchID})
	}
	if params.ProductID != nil {
		qb = qb.Where(squirrel.Eq{"product_id": *params.ProductID})
	}
	if params.Negative {
		qb = qb.Where("quantity < 0")
	}

	qb = qb.OrderBy("branch_id", "product_id")
	if params.Limit > 0 {
		qb = qb.Limit(uint64(params.Limit))
	}
	if params.Offset > 0 {
		qb = qb.Offset(uint64(params.Offset))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock: %w", err)
	}
	defer rows.Close()

	var entries []ports.StockEntry
	for rows.Next() {
		var e ports.StockEntry
		if err := rows.Scan(&e.ProductID, &e.BranchID, &e.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan stock entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}
