package fulfillment

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/oryclothing/ory-backend/pkg/db/models"
	"github.com/oryclothing/ory-backend/pkg/enums"
)

// Repository defines persistence operations for fulfillment tasks.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Schedule(ctx context.Context, tx *gorm.DB, orderID string, dueAt time.Time) error
	FindDue(ctx context.Context, cutoff time.Time, limit int) ([]models.FulfillmentTask, error)
	MarkDone(ctx context.Context, orderID string, completedAt time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a fulfillment task repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Schedule inserts the task on the caller's transaction so it commits or
// rolls back together with the order.
func (r *repository) Schedule(ctx context.Context, tx *gorm.DB, orderID string, dueAt time.Time) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.WithContext(ctx).Create(&models.FulfillmentTask{
		OrderID: orderID,
		DueAt:   dueAt,
		Status:  enums.FulfillmentTaskPending,
	}).Error
}

func (r *repository) FindDue(ctx context.Context, cutoff time.Time, limit int) ([]models.FulfillmentTask, error) {
	var tasks []models.FulfillmentTask
	q := r.db.WithContext(ctx).
		Where("status = ? AND due_at <= ?", enums.FulfillmentTaskPending, cutoff).
		Order("due_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *repository) MarkDone(ctx context.Context, orderID string, completedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.FulfillmentTask{}).
		Where("order_id = ?", orderID).
		Updates(map[string]any{
			"status":       enums.FulfillmentTaskDone,
			"completed_at": completedAt,
		}).Error
}
