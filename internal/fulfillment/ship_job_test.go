package fulfillment

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oryclothing/ory-backend/internal/notifications"
	"github.com/oryclothing/ory-backend/internal/orders"
	"github.com/oryclothing/ory-backend/pkg/db/models"
	"github.com/oryclothing/ory-backend/pkg/db/types"
	"github.com/oryclothing/ory-backend/pkg/enums"
	"github.com/oryclothing/ory-backend/pkg/logger"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:fulfillment_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.Order{},
		&models.OrderLineItem{},
		&models.EmailRecord{},
		&models.FulfillmentTask{},
	)
	if err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return db
}

func newTestJob(t *testing.T, db *gorm.DB) *shipJob {
	t.Helper()
	mailer, err := notifications.NewMailer(notifications.NewRepository(db), nil)
	if err != nil {
		t.Fatalf("creating mailer: %v", err)
	}
	job, err := NewShipJob(ShipJobParams{
		Logger: logger.New(logger.Options{Output: io.Discard}),
		DB:     gormTxRunner{db: db},
		Tasks:  NewRepository(db),
		Orders: orders.NewRepository(db),
		Mailer: mailer,
	})
	if err != nil {
		t.Fatalf("creating job: %v", err)
	}
	return job.(*shipJob)
}

func seedOrder(t *testing.T, db *gorm.DB, id string, status enums.OrderStatus, dueAt time.Time) {
	t.Helper()
	order := &models.Order{
		ID:                id,
		CustomerID:        uuid.New(),
		CustomerEmail:     "buyer@example.com",
		Subtotal:          170,
		Total:             170,
		Status:            status,
		ShippingAddress:   types.Address{Address: "1 Silk Way"},
		TrackingNumber:    "ORYAB12CD34",
		EstimatedDelivery: "2026-09-05",
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seeding order: %v", err)
	}
	task := &models.FulfillmentTask{OrderID: id, DueAt: dueAt, Status: enums.FulfillmentTaskPending}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("seeding task: %v", err)
	}
}

func TestShipJobShipsDueOrders(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	seedOrder(t, db, "ORY-DUE1", enums.OrderStatusConfirmed, now.Add(-time.Second))
	seedOrder(t, db, "ORY-LATER", enums.OrderStatusConfirmed, now.Add(time.Hour))

	job := newTestJob(t, db)
	job.now = func() time.Time { return now }
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var due models.Order
	if err := db.Where("id = ?", "ORY-DUE1").First(&due).Error; err != nil {
		t.Fatalf("loading order: %v", err)
	}
	if due.Status != enums.OrderStatusShipped {
		t.Fatalf("expected shipped, got %q", due.Status)
	}

	var later models.Order
	if err := db.Where("id = ?", "ORY-LATER").First(&later).Error; err != nil {
		t.Fatalf("loading order: %v", err)
	}
	if later.Status != enums.OrderStatusConfirmed {
		t.Fatalf("future order must stay confirmed, got %q", later.Status)
	}

	var task models.FulfillmentTask
	if err := db.Where("order_id = ?", "ORY-DUE1").First(&task).Error; err != nil {
		t.Fatalf("loading task: %v", err)
	}
	if task.Status != enums.FulfillmentTaskDone || task.CompletedAt == nil {
		t.Fatalf("task should be done: status=%q completed=%v", task.Status, task.CompletedAt)
	}

	var email models.EmailRecord
	if err := db.Where("order_id = ?", "ORY-DUE1").First(&email).Error; err != nil {
		t.Fatalf("loading shipping email: %v", err)
	}
	if email.Type != enums.EmailTypeShipping {
		t.Fatalf("unexpected email type %q", email.Type)
	}
	if email.Payload["carrier"] != "DHL Express" {
		t.Fatalf("unexpected carrier %v", email.Payload["carrier"])
	}
}

func TestShipJobIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	seedOrder(t, db, "ORY-DUE1", enums.OrderStatusConfirmed, now.Add(-time.Second))

	job := newTestJob(t, db)
	job.now = func() time.Time { return now }
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	var emails int64
	if err := db.Model(&models.EmailRecord{}).Count(&emails).Error; err != nil {
		t.Fatalf("counting emails: %v", err)
	}
	if emails != 1 {
		t.Fatalf("expected one shipping email, got %d", emails)
	}
}

func TestShipJobSkipsAlreadyShipped(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	seedOrder(t, db, "ORY-SHIPPED", enums.OrderStatusShipped, now.Add(-time.Second))

	job := newTestJob(t, db)
	job.now = func() time.Time { return now }
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var task models.FulfillmentTask
	if err := db.Where("order_id = ?", "ORY-SHIPPED").First(&task).Error; err != nil {
		t.Fatalf("loading task: %v", err)
	}
	if task.Status != enums.FulfillmentTaskDone {
		t.Fatalf("task should be retired, got %q", task.Status)
	}
	var emails int64
	if err := db.Model(&models.EmailRecord{}).Count(&emails).Error; err != nil {
		t.Fatalf("counting emails: %v", err)
	}
	if emails != 0 {
		t.Fatalf("no email expected, got %d", emails)
	}
}

func TestShipJobRetiresOrphanTasks(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	task := &models.FulfillmentTask{OrderID: "ORY-GONE", DueAt: now.Add(-time.Second), Status: enums.FulfillmentTaskPending}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("seeding task: %v", err)
	}

	job := newTestJob(t, db)
	job.now = func() time.Time { return now }
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var loaded models.FulfillmentTask
	if err := db.Where("order_id = ?", "ORY-GONE").First(&loaded).Error; err != nil {
		t.Fatalf("loading task: %v", err)
	}
	if loaded.Status != enums.FulfillmentTaskDone {
		t.Fatalf("orphan task should be retired, got %q", loaded.Status)
	}
}
