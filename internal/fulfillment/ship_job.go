package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/oryclothing/ory-backend/internal/notifications"
	"github.com/oryclothing/ory-backend/internal/orders"
	"github.com/oryclothing/ory-backend/pkg/enums"
	"github.com/oryclothing/ory-backend/pkg/logger"
)

const defaultShipBatchSize = 100

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ShipJobParams configure the confirmed-to-shipped transition job.
type ShipJobParams struct {
	Logger    *logger.Logger
	DB        txRunner
	Tasks     Repository
	Orders    orders.Repository
	Mailer    notifications.Mailer
	BatchSize int
}

// NewShipJob builds the job that ships due orders.
func NewShipJob(params ShipJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Tasks == nil {
		return nil, fmt.Errorf("task repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultShipBatchSize
	}
	return &shipJob{
		logg:   params.Logger,
		db:     params.DB,
		tasks:  params.Tasks,
		orders: params.Orders,
		mailer: params.Mailer,
		batch:  batch,
		now:    time.Now,
	}, nil
}

type shipJob struct {
	logg   *logger.Logger
	db     txRunner
	tasks  Repository
	orders orders.Repository
	mailer notifications.Mailer
	batch  int
	now    func() time.Time
}

func (j *shipJob) Name() string { return "ship-orders" }

func (j *shipJob) Run(ctx context.Context) error {
	due, err := j.tasks.FindDue(ctx, j.now(), j.batch)
	if err != nil {
		return fmt.Errorf("query due fulfillment tasks: %w", err)
	}

	var errs []error
	shipped := 0
	for _, task := range due {
		if err := j.shipOrder(ctx, task.OrderID); err != nil {
			errs = append(errs, fmt.Errorf("ship order %s: %w", task.OrderID, err))
			continue
		}
		shipped++
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"due": len(due), "shipped": shipped})
	j.logg.Info(logCtx, "ship loop complete")
	return multierr.Combine(errs...)
}

func (j *shipJob) shipOrder(ctx context.Context, orderID string) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := j.orders.WithTx(tx)
		taskRepo := j.tasks.WithTx(tx)
		now := j.now()

		order, err := orderRepo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Orphan task; retire it so the loop stops retrying.
				j.logg.Warn(j.logg.WithOrderID(ctx, orderID), "fulfillment.orphan_task")
				return taskRepo.MarkDone(ctx, orderID, now)
			}
			return err
		}
		if order.Status != enums.OrderStatusConfirmed {
			return taskRepo.MarkDone(ctx, orderID, now)
		}

		if err := orderRepo.UpdateStatus(ctx, orderID, enums.OrderStatusShipped); err != nil {
			return err
		}
		if err := taskRepo.MarkDone(ctx, orderID, now); err != nil {
			return err
		}
		return j.mailer.WithTx(tx).SendShippingNotification(ctx, order)
	})
}
