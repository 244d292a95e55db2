package newsletter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oryclothing/ory-backend/internal/notifications"
	"github.com/oryclothing/ory-backend/pkg/db/models"
	pkgerrors "github.com/oryclothing/ory-backend/pkg/errors"
	"github.com/oryclothing/ory-backend/pkg/logger"
)

// Repository defines persistence operations for newsletter subscribers.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.NewsletterSubscriber, error)
	Create(ctx context.Context, sub *models.NewsletterSubscriber) error
	List(ctx context.Context) ([]models.NewsletterSubscriber, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a newsletter repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.NewsletterSubscriber, error) {
	var sub models.NewsletterSubscriber
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repository) Create(ctx context.Context, sub *models.NewsletterSubscriber) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *repository) List(ctx context.Context) ([]models.NewsletterSubscriber, error) {
	var subs []models.NewsletterSubscriber
	err := r.db.WithContext(ctx).
		Order("subscribed_at ASC").
		Find(&subs).Error
	return subs, err
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.NewsletterSubscriber{}).Count(&count).Error
	return count, err
}

// Service handles newsletter signups.
type Service interface {
	Subscribe(ctx context.Context, email string) error
	Subscribers(ctx context.Context) ([]models.NewsletterSubscriber, error)
}

type service struct {
	repo   Repository
	mailer notifications.Mailer
	logg   *logger.Logger
}

// NewService builds the newsletter service.
func NewService(repo Repository, mailer notifications.Mailer, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("newsletter repository required")
	}
	if mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	return &service{repo: repo, mailer: mailer, logg: logg}, nil
}

func (s *service) Subscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up subscriber")
	}
	if existing != nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "Already subscribed")
	}

	sub := &models.NewsletterSubscriber{ID: uuid.New(), Email: email}
	if err := s.repo.Create(ctx, sub); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return pkgerrors.New(pkgerrors.CodeConflict, "Already subscribed")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscriber")
	}

	// Fire and forget: a failed welcome email never fails the signup.
	if err := s.mailer.SendNewsletterWelcome(ctx, email); err != nil && s.logg != nil {
		s.logg.Error(ctx, "newsletter.welcome_email_failed", err)
	}
	return nil
}

func (s *service) Subscribers(ctx context.Context) ([]models.NewsletterSubscriber, error) {
	subs, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list subscribers")
	}
	return subs, nil
}
