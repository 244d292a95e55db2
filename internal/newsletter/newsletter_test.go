package newsletter

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oryclothing/ory-backend/internal/notifications"
	"github.com/oryclothing/ory-backend/pkg/db/models"
	"github.com/oryclothing/ory-backend/pkg/enums"
	pkgerrors "github.com/oryclothing/ory-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:newsletter_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.NewsletterSubscriber{}, &models.EmailRecord{}); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	mailer, err := notifications.NewMailer(notifications.NewRepository(db), nil)
	if err != nil {
		t.Fatalf("creating mailer: %v", err)
	}
	svc, err := NewService(NewRepository(db), mailer, nil)
	if err != nil {
		t.Fatalf("creating service: %v", err)
	}
	return svc, db
}

func TestSubscribeSendsWelcome(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	if err := svc.Subscribe(ctx, " New@Example.COM "); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	var sub models.NewsletterSubscriber
	if err := db.First(&sub).Error; err != nil {
		t.Fatalf("loading subscriber: %v", err)
	}
	if sub.Email != "new@example.com" {
		t.Fatalf("expected normalized email, got %q", sub.Email)
	}

	var email models.EmailRecord
	if err := db.First(&email).Error; err != nil {
		t.Fatalf("loading welcome email: %v", err)
	}
	if email.Type != enums.EmailTypeNewsletterWelcome {
		t.Fatalf("unexpected email type %q", email.Type)
	}
	if email.To != "new@example.com" {
		t.Fatalf("unexpected recipient %q", email.To)
	}
}

func TestSubscribeRejectsDuplicate(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	if err := svc.Subscribe(ctx, "new@example.com"); err != nil {
		t.Fatalf("first subscribe: %v", err)
	}
	err := svc.Subscribe(ctx, "NEW@example.com")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if typed.Message() != "Already subscribed" {
		t.Fatalf("unexpected message %q", typed.Message())
	}

	var emails int64
	if err := db.Model(&models.EmailRecord{}).Count(&emails).Error; err != nil {
		t.Fatalf("counting emails: %v", err)
	}
	if emails != 1 {
		t.Fatalf("duplicate signup must not resend welcome, got %d", emails)
	}
}

func TestSubscribeRejectsInvalidEmail(t *testing.T) {
	svc, _ := newTestService(t)
	for _, email := range []string{"", "   ", "not-an-email"} {
		err := svc.Subscribe(context.Background(), email)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %q, got %v", email, err)
		}
	}
}

func TestSubscribersListsOldestFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, email := range []string{"first@example.com", "second@example.com"} {
		if err := svc.Subscribe(ctx, email); err != nil {
			t.Fatalf("subscribe %s: %v", email, err)
		}
	}

	subs, err := svc.Subscribers(ctx)
	if err != nil {
		t.Fatalf("listing subscribers: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 subscribers, got %d", len(subs))
	}
	if subs[0].Email != "first@example.com" || subs[1].Email != "second@example.com" {
		t.Fatalf("unexpected order: %s, %s", subs[0].Email, subs[1].Email)
	}
}
