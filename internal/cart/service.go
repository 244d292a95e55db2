package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/oryclothing/ory-backend/internal/catalog"
	"github.com/oryclothing/ory-backend/internal/pricing"
	"github.com/oryclothing/ory-backend/internal/promos"
	"github.com/oryclothing/ory-backend/pkg/enums"
	pkgerrors "github.com/oryclothing/ory-backend/pkg/errors"
	"github.com/oryclothing/ory-backend/pkg/logger"
)

const (
	envelopeVersion = 1
	minQuantity     = 1
	maxQuantity     = 10
)

// LineItem is one (product, size) entry with a price snapshotted at the
// time of the first add. Catalog price changes never reprice carts.
type LineItem struct {
	ProductID string            `json:"product_id"`
	Name      string            `json:"name"`
	Size      enums.ProductSize `json:"size"`
	Quantity  int               `json:"quantity"`
	UnitPrice int               `json:"unit_price"`
}

// Cart is a session's full cart state.
type Cart struct {
	Items     []LineItem `json:"items"`
	PromoCode string     `json:"promo_code,omitempty"`
	Bumps     int        `json:"bumps"`
}

type envelope struct {
	Version   int        `json:"version"`
	Items     []LineItem `json:"items"`
	PromoCode string     `json:"promo_code,omitempty"`
	Bumps     int        `json:"bumps"`
}

// Service owns all cart mutations for storefront sessions.
type Service interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	Add(ctx context.Context, sessionID, productID string, size enums.ProductSize) (*Cart, error)
	Remove(ctx context.Context, sessionID, productID string, size enums.ProductSize) (*Cart, error)
	AdjustQuantity(ctx context.Context, sessionID, productID string, size enums.ProductSize, delta int) (*Cart, error)
	Clear(ctx context.Context, sessionID string) error
	ApplyPromo(ctx context.Context, sessionID, code string) (*Cart, error)
	RemovePromo(ctx context.Context, sessionID string) (*Cart, error)
	Quote(ctx context.Context, sessionID string) (*Cart, pricing.Quote, error)
}

type service struct {
	storage Storage
	catalog catalog.Catalog
	rules   promos.RuleSet
	logg    *logger.Logger
}

// NewService builds the cart service with the required dependencies.
func NewService(storage Storage, cat catalog.Catalog, rules promos.RuleSet, logg *logger.Logger) (Service, error) {
	if storage == nil {
		return nil, fmt.Errorf("cart storage required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if rules == nil {
		return nil, fmt.Errorf("promo rule set required")
	}
	return &service{storage: storage, catalog: cat, rules: rules, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	return s.load(ctx, sessionID)
}

func (s *service) Add(ctx context.Context, sessionID, productID string, size enums.ProductSize) (*Cart, error) {
	if !enums.ValidSize(size) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid size %q", size))
	}
	product, ok := s.catalog.Get(productID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", productID))
	}

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if idx := findLine(c.Items, productID, size); idx >= 0 {
		if c.Items[idx].Quantity < maxQuantity {
			c.Items[idx].Quantity++
		}
	} else {
		c.Items = append(c.Items, LineItem{
			ProductID: product.ID,
			Name:      product.Name,
			Size:      size,
			Quantity:  minQuantity,
			UnitPrice: product.Price,
		})
	}
	c.Bumps++

	if err := s.save(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Remove(ctx context.Context, sessionID, productID string, size enums.ProductSize) (*Cart, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if idx := findLine(c.Items, productID, size); idx >= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
		if err := s.save(ctx, sessionID, c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (s *service) AdjustQuantity(ctx context.Context, sessionID, productID string, size enums.ProductSize, delta int) (*Cart, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := findLine(c.Items, productID, size)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "line item not in cart")
	}

	qty := c.Items[idx].Quantity + delta
	if qty < minQuantity {
		qty = minQuantity
	}
	if qty > maxQuantity {
		qty = maxQuantity
	}
	c.Items[idx].Quantity = qty

	if err := s.save(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	return s.storage.Drop(ctx, sessionID)
}

func (s *service) ApplyPromo(ctx context.Context, sessionID, code string) (*Cart, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	subtotal := 0
	for _, item := range c.Items {
		subtotal += item.UnitPrice * item.Quantity
	}

	rule, err := promos.Validate(s.rules, code, subtotal)
	if err != nil {
		return nil, err
	}

	// A new valid code silently replaces any previous one.
	c.PromoCode = rule.Code
	if err := s.save(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) RemovePromo(ctx context.Context, sessionID string) (*Cart, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c.PromoCode = ""
	if err := s.save(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Quote(ctx context.Context, sessionID string) (*Cart, pricing.Quote, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, pricing.Quote{}, err
	}

	lines := make([]pricing.Line, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, pricing.Line{UnitPrice: item.UnitPrice, Quantity: item.Quantity})
	}

	var rule *promos.Rule
	if c.PromoCode != "" {
		if r, ok := s.rules.Lookup(c.PromoCode); ok {
			rule = &r
		}
	}

	return c, pricing.Compute(lines, rule), nil
}

func (s *service) load(ctx context.Context, sessionID string) (*Cart, error) {
	payload, found, err := s.storage.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	if !found {
		return &Cart{Items: []LineItem{}}, nil
	}

	var env envelope
	if unmarshalErr := json.Unmarshal([]byte(payload), &env); unmarshalErr != nil || env.Version != envelopeVersion {
		// Corrupt or old-format carts reset to empty rather than erroring.
		if s.logg != nil {
			s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), "cart.payload_reset")
		}
		return &Cart{Items: []LineItem{}}, nil
	}

	c := &Cart{Items: env.Items, PromoCode: env.PromoCode, Bumps: env.Bumps}
	if c.Items == nil {
		c.Items = []LineItem{}
	}
	return c, nil
}

func (s *service) save(ctx context.Context, sessionID string, c *Cart) error {
	payload, err := json.Marshal(envelope{
		Version:   envelopeVersion,
		Items:     c.Items,
		PromoCode: c.PromoCode,
		Bumps:     c.Bumps,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "serializing cart")
	}
	if err := s.storage.Save(ctx, sessionID, string(payload)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart")
	}
	return nil
}

func findLine(items []LineItem, productID string, size enums.ProductSize) int {
	for i, item := range items {
		if item.ProductID == productID && item.Size == size {
			return i
		}
	}
	return -1
}
