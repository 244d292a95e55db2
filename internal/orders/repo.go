package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/oryclothing/ory-backend/pkg/db/models"
	"github.com/oryclothing/ory-backend/pkg/enums"
)

// Repository defines persistence operations for orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id string, status enums.OrderStatus) error
	Count(ctx context.Context) (int64, error)
	SumTotals(ctx context.Context) (int64, error)
	SumItemQuantities(ctx context.Context) (int64, error)
	SumQuantitiesByProduct(ctx context.Context) (map[string]int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&count).Error
	return count, err
}

// SumTotals returns lifetime gross revenue across all orders.
func (r *repository) SumTotals(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0)").
		Scan(&total).Error
	return total, err
}

func (r *repository) SumItemQuantities(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderLineItem{}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return total, err
}

func (r *repository) SumQuantitiesByProduct(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		ProductID string
		Sold      int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.OrderLineItem{}).
		Select("product_id, COALESCE(SUM(quantity), 0) AS sold").
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sold := make(map[string]int64, len(rows))
	for _, row := range rows {
		sold[row.ProductID] = row.Sold
	}
	return sold, nil
}
