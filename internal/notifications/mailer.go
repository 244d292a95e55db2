package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oryclothing/ory-backend/pkg/db/models"
	"github.com/oryclothing/ory-backend/pkg/enums"
	"github.com/oryclothing/ory-backend/pkg/logger"
)

const shippingCarrier = "DHL Express"

// Mailer writes mock transactional emails to the audit table. Nothing is
// delivered anywhere; the records are the observable behavior.
type Mailer interface {
	WithTx(tx *gorm.DB) Mailer
	SendOrderConfirmation(ctx context.Context, order *models.Order) error
	SendShippingNotification(ctx context.Context, order *models.Order) error
	SendNewsletterWelcome(ctx context.Context, email string) error
	ListByOrder(ctx context.Context, orderID string) ([]models.EmailRecord, error)
}

type mailer struct {
	repo Repository
	logg *logger.Logger
}

// NewMailer builds the mock mailer.
func NewMailer(repo Repository, logg *logger.Logger) (Mailer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	return &mailer{repo: repo, logg: logg}, nil
}

func (m *mailer) WithTx(tx *gorm.DB) Mailer {
	if tx == nil {
		return m
	}
	return &mailer{repo: m.repo.WithTx(tx), logg: m.logg}
}

func (m *mailer) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	items := make([]map[string]any, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, map[string]any{
			"product_id": item.ProductID,
			"name":       item.Name,
			"size":       item.Size,
			"quantity":   item.Quantity,
			"total":      item.Total,
		})
	}

	record := &models.EmailRecord{
		ID:      uuid.New(),
		To:      order.CustomerEmail,
		Type:    enums.EmailTypeOrderConfirmation,
		Subject: fmt.Sprintf("ORY Order Confirmed — %s", order.ID),
		OrderID: &order.ID,
		Payload: map[string]any{
			"items":              items,
			"total":              order.Total,
			"tracking_number":    order.TrackingNumber,
			"estimated_delivery": order.EstimatedDelivery,
		},
		Delivered: true,
	}
	return m.send(ctx, record)
}

func (m *mailer) SendShippingNotification(ctx context.Context, order *models.Order) error {
	record := &models.EmailRecord{
		ID:      uuid.New(),
		To:      order.CustomerEmail,
		Type:    enums.EmailTypeShipping,
		Subject: fmt.Sprintf("Your ORY Order %s Has Shipped", order.ID),
		OrderID: &order.ID,
		Payload: map[string]any{
			"tracking_number":    order.TrackingNumber,
			"estimated_delivery": order.EstimatedDelivery,
			"carrier":            shippingCarrier,
		},
		Delivered: true,
	}
	return m.send(ctx, record)
}

func (m *mailer) SendNewsletterWelcome(ctx context.Context, email string) error {
	record := &models.EmailRecord{
		ID:        uuid.New(),
		To:        email,
		Type:      enums.EmailTypeNewsletterWelcome,
		Subject:   "Welcome to ORY — You're In",
		Delivered: true,
	}
	return m.send(ctx, record)
}

func (m *mailer) ListByOrder(ctx context.Context, orderID string) ([]models.EmailRecord, error) {
	return m.repo.ListByOrder(ctx, orderID)
}

func (m *mailer) send(ctx context.Context, record *models.EmailRecord) error {
	if err := m.repo.Create(ctx, record); err != nil {
		return fmt.Errorf("recording email: %w", err)
	}
	if m.logg != nil {
		ctx = m.logg.WithFields(ctx, map[string]any{
			"email_type": string(record.Type),
			"recipient":  record.To,
		})
		m.logg.Info(ctx, "email.sent")
	}
	return nil
}
