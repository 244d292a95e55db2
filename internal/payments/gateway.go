package payments

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oryclothing/ory-backend/pkg/config"
	"github.com/oryclothing/ory-backend/pkg/enums"
	pkgerrors "github.com/oryclothing/ory-backend/pkg/errors"
	"github.com/oryclothing/ory-backend/pkg/logger"
)

// AuthorizeInput is one proposed charge.
type AuthorizeInput struct {
	Amount     int
	Currency   string
	CardNumber string
}

// Result is the gateway's decision. FailureReason is set only on failed
// authorizations.
type Result struct {
	ID            string                     `json:"id"`
	Status        enums.PaymentStatus        `json:"status"`
	FailureReason enums.PaymentFailureReason `json:"error,omitempty"`
	Amount        int                        `json:"amount"`
	Currency      string                     `json:"currency"`
	Brand         string                     `json:"brand,omitempty"`
	Last4         string                     `json:"last4,omitempty"`
	Created       int64                      `json:"created,omitempty"`
}

// Gateway simulates a PSP authorization decision.
type Gateway interface {
	Authorize(ctx context.Context, input AuthorizeInput) (*Result, error)
}

type cardOutcome struct {
	brand   string
	failure enums.PaymentFailureReason
}

// Stripe's documented test card numbers. Unrecognized numbers authorize as
// a generic success, which is test-mode permissiveness on purpose.
var testCards = map[string]cardOutcome{
	"4242424242424242": {brand: "visa"},
	"4000056655665556": {brand: "visa_debit"},
	"5555555555554444": {brand: "mastercard"},
	"5200828282828210": {brand: "mastercard_debit"},
	"4000000000009995": {failure: enums.PaymentFailureInsufficientFunds},
	"4000000000000002": {failure: enums.PaymentFailureCardDeclined},
	"4000000000009979": {failure: enums.PaymentFailureStolenCard},
}

type gateway struct {
	cfg  config.PaymentsConfig
	logg *logger.Logger
}

// NewGateway builds the mock gateway.
func NewGateway(cfg config.PaymentsConfig, logg *logger.Logger) Gateway {
	return &gateway{cfg: cfg, logg: logg}
}

func (g *gateway) Authorize(ctx context.Context, input AuthorizeInput) (*Result, error) {
	if input.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid amount")
	}
	if g.cfg.AmountCap > 0 && input.Amount > g.cfg.AmountCap {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("amount exceeds the $%d cap", g.cfg.AmountCap))
	}

	card := stripCard(input.CardNumber)
	if len(card) < 13 || len(card) > 19 || !digitsOnly(card) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card number must be 13-19 digits")
	}

	currency := strings.ToLower(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "usd"
	}

	if err := g.simulateLatency(ctx); err != nil {
		return nil, err
	}

	result := &Result{
		ID:       fmt.Sprintf("pi_mock_%s", uuid.NewString()[:8]),
		Amount:   input.Amount,
		Currency: currency,
	}

	outcome, known := testCards[card]
	if known && outcome.failure != "" {
		result.Status = enums.PaymentStatusFailed
		result.FailureReason = outcome.failure
		if g.logg != nil {
			ctx = g.logg.WithFields(ctx, map[string]any{
				"payment_intent": result.ID,
				"reason":         string(outcome.failure),
			})
			g.logg.Warn(ctx, "payment.declined")
		}
		return result, nil
	}

	result.Status = enums.PaymentStatusSucceeded
	result.Brand = outcome.brand
	if result.Brand == "" {
		result.Brand = "unknown"
	}
	result.Last4 = card[len(card)-4:]
	result.Created = time.Now().UnixMilli()

	if g.logg != nil {
		ctx = g.logg.WithField(ctx, "payment_intent", result.ID)
		g.logg.Info(ctx, "payment.authorized")
	}
	return result, nil
}

// simulateLatency waits a random interval in the configured band, bailing
// early if the caller goes away.
func (g *gateway) simulateLatency(ctx context.Context) error {
	min, max := g.cfg.MinLatency, g.cfg.MaxLatency
	if max <= 0 {
		return nil
	}
	if max < min {
		max = min
	}
	delay := min
	if span := max - min; span > 0 {
		delay += time.Duration(rand.Int63n(int64(span)))
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "payment authorization interrupted")
	case <-timer.C:
		return nil
	}
}

func stripCard(card string) string {
	return strings.ReplaceAll(strings.TrimSpace(card), " ", "")
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
