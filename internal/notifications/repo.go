package notifications

import (
	"context"

	"gorm.io/gorm"

	"github.com/oryclothing/ory-backend/pkg/db/models"
)

// Repository defines persistence operations for the email audit trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.EmailRecord) error
	ListByOrder(ctx context.Context, orderID string) ([]models.EmailRecord, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a notifications repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.EmailRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) ListByOrder(ctx context.Context, orderID string) ([]models.EmailRecord, error) {
	var records []models.EmailRecord
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("sent_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
