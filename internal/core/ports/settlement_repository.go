// internal/core/ports/settlement_repository.go
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/tallersoft/pos-be/internal/core/domain"
)

// SettlementRepository is the unit-of-work port for committing a settlement.
// CommitSettlement persists the sale header, its items, payments, the
// optional invoice, the per-line stock and ticket mutations, and the alert
// outbox row in one database transaction: either every write lands or none
// do. It never talks to the fiscal authority; an authorized invoice is passed
// in as data.
type SettlementRepository interface {
	CommitSettlement(ctx context.Context, sale *domain.Sale, alert *domain.PriceAlert) error
}

// SaleRepository is the read-side port for committed sales
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error)
	FindByNumber(ctx context.Context, number string) (*domain.Sale, error)
	FindAll(ctx context.Context, params SaleListParams) ([]*domain.Sale, int64, error)
}

// AlertRepository reads and settles price-alert outbox rows
type AlertRepository interface {
	// FindPending returns the alert, or nil when it was already dispatched
	// or does not exist.
	FindPending(ctx context.Context, id uuid.UUID) (*domain.PriceAlert, error)
	MarkDispatched(ctx context.Context, id uuid.UUID) error
}
