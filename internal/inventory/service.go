package inventory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/oryclothing/ory-backend/internal/catalog"
	"github.com/oryclothing/ory-backend/pkg/db/models"
	"github.com/oryclothing/ory-backend/pkg/enums"
	pkgerrors "github.com/oryclothing/ory-backend/pkg/errors"
	"github.com/oryclothing/ory-backend/pkg/logger"
)

// ProductStock is a catalog product joined with its live stock levels.
type ProductStock struct {
	ID          string                    `json:"id"`
	Name        string                    `json:"name"`
	Price       int                       `json:"price"`
	Description string                    `json:"description"`
	Stock       map[enums.ProductSize]int `json:"stock"`
}

// Service exposes the public inventory read surface and first-boot seeding.
type Service interface {
	ListProducts(ctx context.Context) ([]ProductStock, error)
	GetProduct(ctx context.Context, productID string) (*ProductStock, error)
	SeedIfEmpty(ctx context.Context) error
}

type service struct {
	repo    Repository
	catalog catalog.Catalog
	logg    *logger.Logger
}

// NewService builds the inventory service.
func NewService(repo Repository, cat catalog.Catalog, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog required")
	}
	return &service{repo: repo, catalog: cat, logg: logg}, nil
}

func (s *service) ListProducts(ctx context.Context) ([]ProductStock, error) {
	levels, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing inventory")
	}

	byProduct := make(map[string]map[enums.ProductSize]int)
	for _, level := range levels {
		if byProduct[level.ProductID] == nil {
			byProduct[level.ProductID] = make(map[enums.ProductSize]int)
		}
		byProduct[level.ProductID][level.Size] = level.Stock
	}

	out := make([]ProductStock, 0, 4)
	for _, p := range s.catalog.List() {
		stock := byProduct[p.ID]
		if stock == nil {
			stock = make(map[enums.ProductSize]int)
		}
		out = append(out, ProductStock{
			ID:          p.ID,
			Name:        p.Name,
			Price:       p.Price,
			Description: p.Description,
			Stock:       stock,
		})
	}
	return out, nil
}

func (s *service) GetProduct(ctx context.Context, productID string) (*ProductStock, error) {
	p, ok := s.catalog.Get(productID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	levels, err := s.repo.ListForProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading inventory")
	}

	stock := make(map[enums.ProductSize]int, len(levels))
	for _, level := range levels {
		stock[level.Size] = level.Stock
	}

	return &ProductStock{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Stock:       stock,
	}, nil
}

// SeedIfEmpty writes the launch stock on a fresh database. Existing levels
// are never touched.
func (s *service) SeedIfEmpty(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting inventory: %w", err)
	}
	if count > 0 {
		return nil
	}

	for productID, levels := range s.catalog.InitialStock() {
		for size, qty := range levels {
			level := &models.InventoryLevel{ProductID: productID, Size: size, Stock: qty}
			if err := s.repo.Create(ctx, level); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					continue
				}
				return fmt.Errorf("seeding %s/%s: %w", productID, size, err)
			}
		}
	}

	if s.logg != nil {
		s.logg.Info(ctx, "inventory seeded with launch stock")
	}
	return nil
}
