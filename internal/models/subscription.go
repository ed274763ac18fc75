package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription is a directed subscriber -> author edge. Self-subscription is
// rejected in the service layer and by the check constraint.
type Subscription struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt    time.Time `json:"subscribed_at"`
	SubscriberID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subscriber_author;check:subscriber_id <> author_id" json:"subscriber_id"`
	AuthorID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subscriber_author" json:"author_id"`

	Subscriber User `gorm:"foreignKey:SubscriberID;constraint:OnDelete:CASCADE" json:"-"`
	Author     User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
