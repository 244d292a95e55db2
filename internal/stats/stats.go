package stats

import (
	"context"
	"fmt"
	"sort"

	"github.com/oryclothing/ory-backend/internal/catalog"
	"github.com/oryclothing/ory-backend/internal/customers"
	"github.com/oryclothing/ory-backend/internal/inventory"
	"github.com/oryclothing/ory-backend/internal/orders"
	pkgerrors "github.com/oryclothing/ory-backend/pkg/errors"
)

// TopProduct is one catalog entry ranked by lifetime units sold.
type TopProduct struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	UnitsSold      int64  `json:"units_sold"`
	RemainingStock int64  `json:"remaining_stock"`
}

// Overview is the storefront-wide aggregate snapshot.
type Overview struct {
	TotalRevenue   int64        `json:"total_revenue"`
	TotalOrders    int64        `json:"total_orders"`
	TotalCustomers int64        `json:"total_customers"`
	TotalItemsSold int64        `json:"total_items_sold"`
	TopProducts    []TopProduct `json:"top_products"`
}

// Service computes the read-only stats overview.
type Service interface {
	Overview(ctx context.Context) (*Overview, error)
}

type service struct {
	orders    orders.Repository
	customers customers.Repository
	inventory inventory.Repository
	catalog   catalog.Catalog
}

// NewService builds the stats service.
func NewService(ordersRepo orders.Repository, customersRepo customers.Repository, inventoryRepo inventory.Repository, cat catalog.Catalog) (Service, error) {
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if customersRepo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if inventoryRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog required")
	}
	return &service{
		orders:    ordersRepo,
		customers: customersRepo,
		inventory: inventoryRepo,
		catalog:   cat,
	}, nil
}

func (s *service) Overview(ctx context.Context) (*Overview, error) {
	revenue, err := s.orders.SumTotals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum revenue")
	}
	orderCount, err := s.orders.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	customerCount, err := s.customers.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count customers")
	}
	itemsSold, err := s.orders.SumItemQuantities(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum items sold")
	}
	soldByProduct, err := s.orders.SumQuantitiesByProduct(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "group items sold")
	}
	levels, err := s.inventory.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory")
	}

	remaining := map[string]int64{}
	for _, level := range levels {
		remaining[level.ProductID] += int64(level.Stock)
	}

	top := make([]TopProduct, 0, len(s.catalog.List()))
	for _, product := range s.catalog.List() {
		top = append(top, TopProduct{
			ID:             product.ID,
			Name:           product.Name,
			UnitsSold:      soldByProduct[product.ID],
			RemainingStock: remaining[product.ID],
		})
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].UnitsSold > top[j].UnitsSold
	})

	return &Overview{
		TotalRevenue:   revenue,
		TotalOrders:    orderCount,
		TotalCustomers: customerCount,
		TotalItemsSold: itemsSold,
		TopProducts:    top,
	}, nil
}
