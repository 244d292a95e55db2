package notifications

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oryclothing/ory-backend/pkg/db/models"
	"github.com/oryclothing/ory-backend/pkg/db/types"
	"github.com/oryclothing/ory-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:notifications_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.EmailRecord{}); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return db
}

func testOrder() *models.Order {
	return &models.Order{
		ID:                "ORY-TEST1",
		CustomerID:        uuid.New(),
		CustomerEmail:     "buyer@example.com",
		Subtotal:          170,
		Discount:          17,
		Total:             153,
		Status:            enums.OrderStatusConfirmed,
		ShippingAddress:   types.Address{Address: "1 Silk Way", City: "Antwerp", Zip: "2000", Country: "BE"},
		TrackingNumber:    "ORYAB12CD34",
		EstimatedDelivery: "2026-09-05",
		Items: []models.OrderLineItem{
			{ID: uuid.New(), OrderID: "ORY-TEST1", ProductID: "stealth", Name: "Stealth", Size: enums.SizeM, Quantity: 2, UnitPrice: 85, Total: 170},
		},
	}
}

func TestSendOrderConfirmation(t *testing.T) {
	db := newTestDB(t)
	mailer, err := NewMailer(NewRepository(db), nil)
	if err != nil {
		t.Fatalf("creating mailer: %v", err)
	}
	ctx := context.Background()

	order := testOrder()
	if err := mailer.SendOrderConfirmation(ctx, order); err != nil {
		t.Fatalf("sending confirmation: %v", err)
	}

	records, err := mailer.ListByOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("listing records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Type != enums.EmailTypeOrderConfirmation {
		t.Fatalf("unexpected type %q", rec.Type)
	}
	if rec.Subject != "ORY Order Confirmed — ORY-TEST1" {
		t.Fatalf("unexpected subject %q", rec.Subject)
	}
	if rec.To != "buyer@example.com" {
		t.Fatalf("unexpected recipient %q", rec.To)
	}
	if !rec.Delivered {
		t.Fatalf("expected delivered record")
	}
	if rec.Payload["tracking_number"] != "ORYAB12CD34" {
		t.Fatalf("unexpected tracking payload %v", rec.Payload["tracking_number"])
	}
}

func TestSendShippingNotification(t *testing.T) {
	db := newTestDB(t)
	mailer, err := NewMailer(NewRepository(db), nil)
	if err != nil {
		t.Fatalf("creating mailer: %v", err)
	}
	ctx := context.Background()

	order := testOrder()
	if err := mailer.SendShippingNotification(ctx, order); err != nil {
		t.Fatalf("sending shipping notification: %v", err)
	}

	records, err := mailer.ListByOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("listing records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Subject != "Your ORY Order ORY-TEST1 Has Shipped" {
		t.Fatalf("unexpected subject %q", rec.Subject)
	}
	if rec.Payload["carrier"] != "DHL Express" {
		t.Fatalf("unexpected carrier %v", rec.Payload["carrier"])
	}
}

func TestSendNewsletterWelcomeHasNoOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	mailer, err := NewMailer(repo, nil)
	if err != nil {
		t.Fatalf("creating mailer: %v", err)
	}
	ctx := context.Background()

	if err := mailer.SendNewsletterWelcome(ctx, "new@example.com"); err != nil {
		t.Fatalf("sending welcome: %v", err)
	}

	var rec models.EmailRecord
	if err := db.WithContext(ctx).First(&rec).Error; err != nil {
		t.Fatalf("loading record: %v", err)
	}
	if rec.Subject != "Welcome to ORY — You're In" {
		t.Fatalf("unexpected subject %q", rec.Subject)
	}
	if rec.OrderID != nil {
		t.Fatalf("expected no order id, got %v", *rec.OrderID)
	}
	if rec.Type != enums.EmailTypeNewsletterWelcome {
		t.Fatalf("unexpected type %q", rec.Type)
	}
}

func TestListByOrderScopesToOrder(t *testing.T) {
	db := newTestDB(t)
	mailer, err := NewMailer(NewRepository(db), nil)
	if err != nil {
		t.Fatalf("creating mailer: %v", err)
	}
	ctx := context.Background()

	first := testOrder()
	second := testOrder()
	second.ID = "ORY-TEST2"
	if err := mailer.SendOrderConfirmation(ctx, first); err != nil {
		t.Fatalf("sending first: %v", err)
	}
	if err := mailer.SendOrderConfirmation(ctx, second); err != nil {
		t.Fatalf("sending second: %v", err)
	}
	if err := mailer.SendShippingNotification(ctx, first); err != nil {
		t.Fatalf("sending shipping: %v", err)
	}

	records, err := mailer.ListByOrder(ctx, first.ID)
	if err != nil {
		t.Fatalf("listing records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records for first order, got %d", len(records))
	}
	if records[0].Type != enums.EmailTypeOrderConfirmation || records[1].Type != enums.EmailTypeShipping {
		t.Fatalf("unexpected ordering: %q then %q", records[0].Type, records[1].Type)
	}
}
