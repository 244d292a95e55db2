package models

import (
	"time"

	"github.com/google/uuid"
)

// NewsletterSubscriber is one opted-in email address.
type NewsletterSubscriber struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	SubscribedAt time.Time `gorm:"column:subscribed_at;autoCreateTime"`
}

func (NewsletterSubscriber) TableName() string {
	return "newsletter_subscribers"
}
