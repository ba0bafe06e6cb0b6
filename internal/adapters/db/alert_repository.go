// internal/adapters/db/alert_repository.go
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

// alertRepository implements ports.AlertRepository over the sale_alerts
// outbox table
type alertRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewAlertRepository creates a new alert outbox repository
func NewAlertRepository(db *Database, logger *slog.Logger) ports.AlertRepository {
	return &alertRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "alert")),
	}
}

// FindPending returns the alert, or nil when it was already dispatched or
// never existed. Dispatched rows are skipped so a retried task cannot notify
// supervisors twice.
func (r *alertRepository) FindPending(ctx context.Context, id uuid.UUID) (*domain.PriceAlert, error) {
	query := `
		SELECT id, sale_id, sale_number, payload, created_at
		FROM sale_alerts
		WHERE id = $1 AND dispatched_at IS NULL`

	alert := &domain.PriceAlert{}
	var payload []byte

	err := r.db.QueryRow(ctx, query, id).Scan(
		&alert.ID, &alert.SaleID, &alert.SaleNumber, &payload,
		&alert.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find alert: %w", err)
	}

	if err := json.Unmarshal(payload, &alert.Overrides); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alert payload: %w", err)
	}
	return alert, nil
}

// MarkDispatched stamps the outbox row after all notifications went out
func (r *alertRepository) MarkDispatched(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE sale_alerts SET dispatched_at = now() WHERE id = $1 AND dispatched_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to mark alert dispatched: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alert not found or already dispatched: %s", id)
	}

	r.logger.DebugContext(ctx, "alert dispatched", slog.String("alert_id", id.String()))
	return nil
}
