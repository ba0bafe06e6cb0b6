// internal/workers/alerts_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/tallersoft/pos-be/internal/core/domain"
	"github.com/tallersoft/pos-be/internal/core/ports"
)

// TypePriceAlert is the task type for price override alert dispatch
const TypePriceAlert = "alerts:price_override"

// PriceAlertPayload is the task payload; the alert body lives in the outbox
// row, only the ID travels through the queue.
type PriceAlertPayload struct {
	AlertID uuid.UUID `json:"alert_id"`
}

// NewPriceAlertTask creates a task for dispatching a price override alert
func NewPriceAlertTask(alertID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(PriceAlertPayload{AlertID: alertID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal price alert payload: %w", err)
	}
	return asynq.NewTask(TypePriceAlert, payload, asynq.Queue("critical")), nil
}

// AlertsQueue enqueues alert dispatch tasks through Asynq
type AlertsQueue struct {
	client *asynq.Client
	logger *slog.Logger
}

var _ ports.AlertQueue = (*AlertsQueue)(nil)

// NewAlertsQueue creates an Asynq-backed alert queue
func NewAlertsQueue(client *asynq.Client, logger *slog.Logger) *AlertsQueue {
	return &AlertsQueue{
		client: client,
		logger: logger.With(slog.String("component", "alerts_queue")),
	}
}

// EnqueuePriceAlert schedules dispatch of a committed alert outbox row
func (q *AlertsQueue) EnqueuePriceAlert(ctx context.Context, alertID uuid.UUID) error {
	task, err := NewPriceAlertTask(alertID)
	if err != nil {
		return err
	}

	info, err := q.client.EnqueueContext(ctx, task, asynq.MaxRetry(5))
	if err != nil {
		return fmt.Errorf("failed to enqueue price alert %s: %w", alertID, err)
	}

	q.logger.DebugContext(ctx, "price alert enqueued",
		slog.String("alert_id", alertID.String()),
		slog.String("task_id", info.ID),
		slog.String("queue", info.Queue))

	return nil
}

// AlertsProcessor dispatches price override alerts to supervisors
type AlertsProcessor struct {
	alerts   ports.AlertRepository
	users    ports.UserDirectory
	notifier ports.Notifier
	logger   *slog.Logger
}

// NewAlertsProcessor creates a new alerts processor
func NewAlertsProcessor(alerts ports.AlertRepository, users ports.UserDirectory, notifier ports.Notifier, logger *slog.Logger) *AlertsProcessor {
	return &AlertsProcessor{
		alerts:   alerts,
		users:    users,
		notifier: notifier,
		logger:   logger.With(slog.String("processor", "alerts")),
	}
}

// ProcessPriceAlert delivers one alert to every active supervisor and marks
// the outbox row dispatched. A row that is missing or already dispatched is
// skipped without error, which makes redelivery of the task harmless.
func (p *AlertsProcessor) ProcessPriceAlert(ctx context.Context, t *asynq.Task) error {
	var payload PriceAlertPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	alert, err := p.alerts.FindPending(ctx, payload.AlertID)
	if err != nil {
		return fmt.Errorf("failed to load alert %s: %w", payload.AlertID, err)
	}
	if alert == nil {
		p.logger.InfoContext(ctx, "alert already dispatched or gone, skipping",
			slog.String("alert_id", payload.AlertID.String()))
		return nil
	}

	supervisors, err := p.users.FindByRole(ctx, domain.RoleSupervisor)
	if err != nil {
		return fmt.Errorf("failed to resolve supervisors: %w", err)
	}
	if len(supervisors) == 0 {
		p.logger.WarnContext(ctx, "no active supervisors to notify",
			slog.String("alert_id", alert.ID.String()),
			slog.String("sale_number", alert.SaleNumber))
	}

	subject := fmt.Sprintf("Price override on sale %s", alert.SaleNumber)
	body := alert.Message()

	for _, supervisor := range supervisors {
		if err := p.notifier.Notify(ctx, supervisor, subject, body); err != nil {
			// Returning the error lets Asynq retry the whole task; the
			// dispatched_at guard keeps the retry from double-sending
			// after a later successful pass.
			return fmt.Errorf("failed to notify %s: %w", supervisor.Email, err)
		}
	}

	if err := p.alerts.MarkDispatched(ctx, alert.ID); err != nil {
		return fmt.Errorf("failed to mark alert %s dispatched: %w", alert.ID, err)
	}

	p.logger.InfoContext(ctx, "price alert dispatched",
		slog.String("alert_id", alert.ID.String()),
		slog.String("sale_number", alert.SaleNumber),
		slog.Int("recipients", len(supervisors)),
		slog.Int("overrides", len(alert.Overrides)))

	return nil
}
