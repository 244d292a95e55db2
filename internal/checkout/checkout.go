package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/oryclothing/ory-backend/internal/cart"
	"github.com/oryclothing/ory-backend/internal/orders"
	"github.com/oryclothing/ory-backend/internal/payments"
	"github.com/oryclothing/ory-backend/pkg/db/models"
	"github.com/oryclothing/ory-backend/pkg/enums"
	pkgerrors "github.com/oryclothing/ory-backend/pkg/errors"
	"github.com/oryclothing/ory-backend/pkg/logger"
)

// State is the checkout attempt's terminal position as reported to clients.
// Processing is never returned from Submit; it only exists while the guard
// key is held.
type State string

const (
	StateSuccess State = "success"
	StateError   State = "error"

	guardTTL = 2 * time.Minute
)

// SubmitInput carries everything a single checkout attempt needs.
type SubmitInput struct {
	CardNumber string               `json:"card_number" validate:"required"`
	Customer   orders.CustomerInput `json:"customer" validate:"required"`
}

// Result is the outcome of one checkout attempt.
type Result struct {
	State   State            `json:"state"`
	Message string           `json:"message,omitempty"`
	Order   *models.Order    `json:"order,omitempty"`
	Payment *payments.Result `json:"payment,omitempty"`
}

type guardStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	LockKey(name string) string
}

// Service orchestrates a checkout attempt: payment first, then order
// creation, then cart teardown.
type Service interface {
	Submit(ctx context.Context, sessionID string, input SubmitInput) (*Result, error)
}

type service struct {
	carts   cart.Service
	gateway payments.Gateway
	orders  orders.Service
	guard   guardStore
	logg    *logger.Logger
}

// NewService builds the checkout orchestrator.
func NewService(carts cart.Service, gateway payments.Gateway, orderSvc orders.Service, guard guardStore, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if orderSvc == nil {
		return nil, fmt.Errorf("order service required")
	}
	if guard == nil {
		return nil, fmt.Errorf("guard store required")
	}
	return &service{
		carts:   carts,
		gateway: gateway,
		orders:  orderSvc,
		guard:   guard,
		logg:    logg,
	}, nil
}

func (s *service) Submit(ctx context.Context, sessionID string, input SubmitInput) (*Result, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}

	key := s.guard.LockKey("checkout:" + sessionID)
	acquired, err := s.guard.SetNX(ctx, key, "1", guardTTL)
	if err != nil {
		// Guard store outage must not block checkout entirely.
		if s.logg != nil {
			s.logg.Warn(ctx, "checkout.guard_unavailable")
		}
	} else if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already in progress")
	}
	if acquired {
		// Only the submit that set the key may release it. A fail-open
		// submit never owns the guard.
		defer func() {
			if delErr := s.guard.Del(context.WithoutCancel(ctx), key); delErr != nil && s.logg != nil {
				s.logg.Warn(ctx, "checkout.guard_release_failed")
			}
		}()
	}

	current, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(current.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	_, quote, err := s.carts.Quote(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	payment, err := s.gateway.Authorize(ctx, payments.AuthorizeInput{
		Amount:     quote.Total,
		CardNumber: input.CardNumber,
	})
	if err != nil {
		return nil, err
	}
	if payment.Status != enums.PaymentStatusSucceeded {
		// Cart is left untouched so the buyer can retry.
		return &Result{
			State:   StateError,
			Message: declineMessage(payment.FailureReason),
			Payment: payment,
		}, nil
	}

	items := make([]orders.OrderItemInput, 0, len(current.Items))
	for _, line := range current.Items {
		items = append(items, orders.OrderItemInput{
			ProductID: line.ProductID,
			Size:      line.Size,
			Quantity:  line.Quantity,
		})
	}
	order, err := s.orders.Create(ctx, orders.CreateOrderInput{
		Items:           items,
		Customer:        input.Customer,
		PromoCode:       current.PromoCode,
		PaymentIntentID: payment.ID,
	})
	if err != nil {
		// Payment captured but no order exists. There is no refund path in
		// the mock gateway, so flag it loudly for manual reconciliation.
		if s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"payment_intent_id": payment.ID,
				"amount":            payment.Amount,
			})
			s.logg.Error(logCtx, "checkout.payment_captured_without_order", err)
		}
		return nil, err
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithOrderID(ctx, order.ID), "checkout.cart_clear_failed")
	}

	return &Result{
		State:   StateSuccess,
		Order:   order,
		Payment: payment,
	}, nil
}

func declineMessage(reason enums.PaymentFailureReason) string {
	switch reason {
	case enums.PaymentFailureInsufficientFunds:
		return "Your card has insufficient funds."
	case enums.PaymentFailureCardDeclined:
		return "Your card was declined."
	case enums.PaymentFailureStolenCard:
		// Stolen cards get the same message as a plain decline.
		return "Your card was declined."
	default:
		return "Payment could not be completed."
	}
}
