package inventory

import (
	"context"

	"gorm.io/gorm"

	"github.com/oryclothing/ory-backend/pkg/db/models"
	"github.com/oryclothing/ory-backend/pkg/enums"
)

// Repository defines persistence operations for stock levels.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.InventoryLevel, error)
	ListForProduct(ctx context.Context, productID string) ([]models.InventoryLevel, error)
	Get(ctx context.Context, productID string, size enums.ProductSize) (*models.InventoryLevel, error)
	Decrement(ctx context.Context, productID string, size enums.ProductSize, qty int) (bool, error)
	Create(ctx context.Context, level *models.InventoryLevel) error
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context) ([]models.InventoryLevel, error) {
	var levels []models.InventoryLevel
	err := r.db.WithContext(ctx).
		Order("product_id ASC, size ASC").
		Find(&levels).Error
	if err != nil {
		return nil, err
	}
	return levels, nil
}

func (r *repository) ListForProduct(ctx context.Context, productID string) ([]models.InventoryLevel, error) {
	var levels []models.InventoryLevel
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Find(&levels).Error
	if err != nil {
		return nil, err
	}
	return levels, nil
}

func (r *repository) Get(ctx context.Context, productID string, size enums.ProductSize) (*models.InventoryLevel, error) {
	var level models.InventoryLevel
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND size = ?", productID, size).
		First(&level).Error
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// Decrement subtracts qty from the level, guarded by a stock floor so two
// concurrent orders can never drive stock negative. Returns false when the
// remaining stock was insufficient.
func (r *repository) Decrement(ctx context.Context, productID string, size enums.ProductSize, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.InventoryLevel{}).
		Where("product_id = ? AND size = ? AND stock >= ?", productID, size, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) Create(ctx context.Context, level *models.InventoryLevel) error {
	return r.db.WithContext(ctx).Create(level).Error
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InventoryLevel{}).Count(&count).Error
	return count, err
}
