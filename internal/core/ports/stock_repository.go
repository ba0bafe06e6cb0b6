// internal/core/ports/stock_repository.go
package ports

import (
	"context"

	"github.com/google/uuid"
)

// StockEntry is the per-(product, branch) stock balance. Quantity may go
// negative: a sale is never blocked by a stale count.
type StockEntry struct {
	ProductID uuid.UUID `json:"product_id"`
	BranchID  uuid.UUID `json:"branch_id"`
	Quantity  int       `json:"quantity"`
}

// StockQueryParams filters stock listings
type StockQueryParams struct {
	BranchID  *uuid.UUID
	ProductID *uuid.UUID
	Negative  bool // only entries below zero
	Limit     int
	Offset    int
}

// StockRepository is the inventory ledger port outside of settlements.
// Adjust applies a relative delta as a single atomic statement; it upserts
// the row when absent.
type StockRepository interface {
	Quantity(ctx context.Context, productID, branchID uuid.UUID) (int, bool, error)
	Adjust(ctx context.Context, productID, branchID uuid.UUID, delta int) (int, error)
	FindAll(ctx context.Context, params StockQueryParams) ([]StockEntry, error)
}
