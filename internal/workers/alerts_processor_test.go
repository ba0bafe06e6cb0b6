package workers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tallersoft/pos-be/internal/core/domain"
	"github.com/tallersoft/pos-be/internal/core/ports"
	"github.com/tallersoft/pos-be/internal/workers"
	"github.com/tallersoft/pos-be/test/helpers"
	"github.com/tallersoft/pos-be/test/mocks"
)

func pendingAlert() *domain.PriceAlert {
	return &domain.PriceAlert{
		ID:         uuid.New(),
		SaleID:     uuid.New(),
		SaleNumber: "20250314150926-AB12",
		Overrides: []domain.PriceOverride{
			{
				Name:     "Screen replacement",
				Original: decimal.NewFromInt(15000),
				Final:    decimal.NewFromInt(12000),
				Reason:   "goodwill",
			},
		},
		CreatedAt: time.Now(),
	}
}

func supervisor(email string) ports.User {
	return ports.User{ID: uuid.New(), Name: "Super Visor", Email: email}
}

func TestAlertsProcessor_ProcessPriceAlert(t *testing.T) {
	ctx := context.Background()

	newProcessor := func(t *testing.T) (*workers.AlertsProcessor, *mocks.MockAlertRepository, *mocks.MockUserDirectory, *mocks.MockNotifier) {
		ctrl := gomock.NewController(t)
		alerts := mocks.NewMockAlertRepository(ctrl)
		users := mocks.NewMockUserDirectory(ctrl)
		notifier := mocks.NewMockNotifier(ctrl)
		p := workers.NewAlertsProcessor(alerts, users, notifier, helpers.TestLogger())
		return p, alerts, users, notifier
	}

	t.Run("notifies_every_supervisor_and_marks_dispatched", func(t *testing.T) {
		p, alerts, users, notifier := newProcessor(t)
		alert := pendingAlert()

		alerts.EXPECT().FindPending(gomock.Any(), alert.ID).Return(alert, nil)
		users.EXPECT().FindByRole(gomock.Any(), domain.RoleSupervisor).
			Return([]ports.User{supervisor("sup1@taller.test"), supervisor("sup2@taller.test")}, nil)
		notifier.EXPECT().
			Notify(gomock.Any(), gomock.Any(), "Price override on sale 20250314150926-AB12", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ ports.User, _ string, body string) error {
				assert.Contains(t, body, "Screen replacement: 15000.00 -> 12000.00 (goodwill)")
				return nil
			}).
			Times(2)
		alerts.EXPECT().MarkDispatched(gomock.Any(), alert.ID).Return(nil)

		task, err := workers.NewPriceAlertTask(alert.ID)
		require.NoError(t, err)

		require.NoError(t, p.ProcessPriceAlert(ctx, task))
	})

	t.Run("skips_silently_when_the_alert_is_gone", func(t *testing.T) {
		p, alerts, _, _ := newProcessor(t)
		alertID := uuid.New()

		alerts.EXPECT().FindPending(gomock.Any(), alertID).Return(nil, nil)

		task, err := workers.NewPriceAlertTask(alertID)
		require.NoError(t, err)

		// Redelivery of an already-dispatched alert must not notify again
		require.NoError(t, p.ProcessPriceAlert(ctx, task))
	})

	t.Run("no_supervisors_still_marks_dispatched", func(t *testing.T) {
		p, alerts, users, _ := newProcessor(t)
		alert := pendingAlert()

		alerts.EXPECT().FindPending(gomock.Any(), alert.ID).Return(alert, nil)
		users.EXPECT().FindByRole(gomock.Any(), domain.RoleSupervisor).Return(nil, nil)
		alerts.EXPECT().MarkDispatched(gomock.Any(), alert.ID).Return(nil)

		task, err := workers.NewPriceAlertTask(alert.ID)
		require.NoError(t, err)

		require.NoError(t, p.ProcessPriceAlert(ctx, task))
	})

	t.Run("notify_failure_leaves_the_alert_pending", func(t *testing.T) {
		p, alerts, users, notifier := newProcessor(t)
		alert := pendingAlert()

		alerts.EXPECT().FindPending(gomock.Any(), alert.ID).Return(alert, nil)
		users.EXPECT().FindByRole(gomock.Any(), domain.RoleSupervisor).
			Return([]ports.User{supervisor("sup1@taller.test")}, nil)
		notifier.EXPECT().
			Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("smtp unavailable"))
		// MarkDispatched is not expected: the task must be retried whole

		task, err := workers.NewPriceAlertTask(alert.ID)
		require.NoError(t, err)

		err = p.ProcessPriceAlert(ctx, task)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sup1@taller.test")
	})

	t.Run("unparseable_payload_is_not_retried", func(t *testing.T) {
		p, _, _, _ := newProcessor(t)

		task := asynq.NewTask(workers.TypePriceAlert, []byte("{not json"))

		err := p.ProcessPriceAlert(ctx, task)
		require.Error(t, err)
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("repository_error_propagates_for_retry", func(t *testing.T) {
		p, alerts, _, _ := newProcessor(t)
		alertID := uuid.New()

		alerts.EXPECT().FindPending(gomock.Any(), alertID).
			Return(nil, errors.New("connection reset"))

		task, err := workers.NewPriceAlertTask(alertID)
		require.NoError(t, err)

		err = p.ProcessPriceAlert(ctx, task)
		require.Error(t, err)
		assert.NotErrorIs(t, err, asynq.SkipRetry)
	})
}

func TestNewPriceAlertTask(t *testing.T) {
	alertID := uuid.New()

	task, err := workers.NewPriceAlertTask(alertID)

	require.NoError(t, err)
	assert.Equal(t, workers.TypePriceAlert, task.Type())
	assert.Contains(t, string(task.Payload()), alertID.String())
}
