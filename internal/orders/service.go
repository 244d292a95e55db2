package orders

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oryclothing/ory-backend/internal/catalog"
	"github.com/oryclothing/ory-backend/internal/customers"
	"github.com/oryclothing/ory-backend/internal/inventory"
	"github.com/oryclothing/ory-backend/internal/notifications"
	"github.com/oryclothing/ory-backend/internal/pricing"
	"github.com/oryclothing/ory-backend/internal/promos"
	"github.com/oryclothing/ory-backend/pkg/config"
	"github.com/oryclothing/ory-backend/pkg/db/models"
	"github.com/oryclothing/ory-backend/pkg/db/types"
	"github.com/oryclothing/ory-backend/pkg/enums"
	pkgerrors "github.com/oryclothing/ory-backend/pkg/errors"
	"github.com/oryclothing/ory-backend/pkg/logger"
)

const (
	minLineQuantity = 1
	maxLineQuantity = 10
	maxLineItems    = 20

	deliveryOffsetDays = 5

	trackingCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	trackingLength  = 8
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// TaskScheduler persists a durable fulfillment task inside the order
// transaction so shipment survives process restarts.
type TaskScheduler interface {
	Schedule(ctx context.Context, tx *gorm.DB, orderID string, dueAt time.Time) error
}

// Service defines order creation and lookup.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, id string) (*models.Order, error)
}

type service struct {
	repo      Repository
	inventory inventory.Repository
	customers customers.Repository
	catalog   catalog.Catalog
	rules     promos.RuleSet
	mailer    notifications.Mailer
	tasks     TaskScheduler
	tx        txRunner
	cfg       config.FulfillmentConfig
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the order service with the required dependencies.
func NewService(
	repo Repository,
	inv inventory.Repository,
	cust customers.Repository,
	cat catalog.Catalog,
	rules promos.RuleSet,
	mailer notifications.Mailer,
	tasks TaskScheduler,
	tx txRunner,
	cfg config.FulfillmentConfig,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if inv == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if cust == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if rules == nil {
		return nil, fmt.Errorf("promo rules required")
	}
	if mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if tasks == nil {
		return nil, fmt.Errorf("task scheduler required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:      repo,
		inventory: inv,
		customers: cust,
		catalog:   cat,
		rules:     rules,
		mailer:    mailer,
		tasks:     tasks,
		tx:        tx,
		cfg:       cfg,
		logg:      logg,
		now:       time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	now := s.now()
	lines := make([]models.OrderLineItem, 0, len(input.Items))
	pricingLines := make([]pricing.Line, 0, len(input.Items))
	for _, item := range input.Items {
		product, _ := s.catalog.Get(item.ProductID)
		lines = append(lines, models.OrderLineItem{
			ID:        uuid.New(),
			ProductID: product.ID,
			Name:      product.Name,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			Total:     product.Price * item.Quantity,
		})
		pricingLines = append(pricingLines, pricing.Line{UnitPrice: product.Price, Quantity: item.Quantity})
	}

	var rule *promos.Rule
	if input.PromoCode != "" {
		matched, ok := s.rules.Lookup(promos.Normalize(input.PromoCode))
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid code")
		}
		rule = &matched
	}
	quote := pricing.Compute(pricingLines, rule)

	email := strings.ToLower(strings.TrimSpace(input.Customer.Email))
	orderID := newOrderID(now)

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		invRepo := s.inventory.WithTx(tx)
		for _, item := range input.Items {
			ok, err := invRepo.Decrement(ctx, item.ProductID, item.Size, item.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
			if !ok {
				product, _ := s.catalog.Get(item.ProductID)
				available := 0
				if level, gerr := invRepo.Get(ctx, item.ProductID, item.Size); gerr == nil {
					available = level.Stock
				}
				return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf(
					"Insufficient stock for %s (%s). Available: %d",
					product.Name, item.Size, available,
				))
			}
		}

		custRepo := s.customers.WithTx(tx)
		customer, err := custRepo.FindByEmail(ctx, email)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
		}
		if customer == nil {
			customer = &models.Customer{
				ID:        uuid.New(),
				Email:     email,
				FirstName: input.Customer.FirstName,
				LastName:  input.Customer.LastName,
			}
			if err := custRepo.Create(ctx, customer); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
			}
		}

		order := &models.Order{
			ID:            orderID,
			CustomerID:    customer.ID,
			CustomerEmail: email,
			Subtotal:      quote.Subtotal,
			Discount:      quote.Discount,
			Total:         quote.Total,
			Status:        enums.OrderStatusConfirmed,
			ShippingAddress: types.Address{
				FirstName: input.Customer.FirstName,
				LastName:  input.Customer.LastName,
				Address:   input.Customer.Address,
				City:      input.Customer.City,
				Zip:       input.Customer.Zip,
				Country:   input.Customer.Country,
			},
			TrackingNumber:    newTrackingNumber(),
			EstimatedDelivery: now.AddDate(0, 0, deliveryOffsetDays).Format("2006-01-02"),
			Items:             lines,
		}
		if input.PaymentIntentID != "" {
			order.PaymentIntentID = &input.PaymentIntentID
		}

		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}
		if err := custRepo.AddOrderAggregates(ctx, customer.ID, order.Total); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer aggregates")
		}
		if err := s.tasks.Schedule(ctx, tx, order.ID, now.Add(s.cfg.ShipDelay)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "schedule fulfillment")
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Fire and forget: a failed confirmation email never fails the order.
	if err := s.mailer.SendOrderConfirmation(ctx, created); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithOrderID(ctx, created.ID), "order.confirmation_email_failed", err)
	}
	if s.logg != nil {
		ctx := s.logg.WithFields(ctx, map[string]any{
			"order_id": created.ID,
			"total":    created.Total,
		})
		s.logg.Info(ctx, "order.created")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// validateInput fails fast on the first offending field.
func (s *service) validateInput(input CreateOrderInput) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}
	if len(input.Items) > maxLineItems {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d items per order", maxLineItems))
	}
	for i, item := range input.Items {
		if _, ok := s.catalog.Get(item.ProductID); !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("items[%d]: unknown product %q", i, item.ProductID))
		}
		if !enums.ValidSize(item.Size) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("items[%d]: invalid size %q", i, item.Size))
		}
		if item.Quantity < minLineQuantity || item.Quantity > maxLineQuantity {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf(
				"items[%d]: quantity must be between %d and %d", i, minLineQuantity, maxLineQuantity,
			))
		}
	}
	if strings.TrimSpace(input.Customer.Email) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer email required")
	}
	return nil
}

func newOrderID(now time.Time) string {
	return "ORY-" + strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
}

func newTrackingNumber() string {
	b := make([]byte, trackingLength)
	for i := range b {
		b[i] = trackingCharset[rand.Intn(len(trackingCharset))]
	}
	return "ORY" + string(b)
}
