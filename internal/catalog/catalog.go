package catalog

import (
	"github.com/oryclothing/ory-backend/pkg/enums"
)

// Product is a sellable garment. The line is fixed at four silk series, so
// the catalog ships compiled in rather than living in a table.
type Product struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Price       int                 `json:"price"`
	Description string              `json:"description"`
	Image       string              `json:"image"`
	Sizes       []enums.ProductSize `json:"sizes"`
}

// Catalog resolves product identity and pricing.
type Catalog interface {
	Get(id string) (Product, bool)
	List() []Product
	InitialStock() map[string]map[enums.ProductSize]int
}

type catalog struct {
	products []Product
	byID     map[string]Product
}

// New returns the storefront catalog.
func New() Catalog {
	c := &catalog{
		products: products,
		byID:     make(map[string]Product, len(products)),
	}
	for _, p := range c.products {
		c.byID[p.ID] = p
	}
	return c
}

func (c *catalog) Get(id string) (Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}

func (c *catalog) List() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *catalog) InitialStock() map[string]map[enums.ProductSize]int {
	out := make(map[string]map[enums.ProductSize]int, len(initialStock))
	for id, levels := range initialStock {
		inner := make(map[enums.ProductSize]int, len(levels))
		for size, qty := range levels {
			inner[size] = qty
		}
		out[id] = inner
	}
	return out
}
