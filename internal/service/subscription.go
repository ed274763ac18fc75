package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// AuthorProfile is a user annotated for a particular viewer: whether the
// viewer follows them, how many recipes they have published and a newest
// first, optionally truncated slice of those recipes.
type AuthorProfile struct {
	User         models.User
	IsSubscribed bool
	RecipesCount int64
	Recipes      []models.Recipe
}

// SubscriptionService maintains the directed subscriber -> author graph
type SubscriptionService struct {
	db *gorm.DB
}

// NewSubscriptionService creates a new SubscriptionService instance
func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Subscribe creates a subscriber -> author edge and returns the annotated
// author. Fails with ErrNotFound for an unknown author, ErrSelfSubscription
// when both sides match and ErrAlreadyExists for a duplicate edge (the
// unique index decides under concurrency).
func (s *SubscriptionService) Subscribe(ctx context.Context, subscriberID, authorID uuid.UUID, recipesLimit *int) (*AuthorProfile, error) {
	if subscriberID == authorID {
		return nil, ErrSelfSubscription
	}

	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	edge := models.Subscription{SubscriberID: subscriberID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	return s.annotate(ctx, author, true, recipesLimit)
}

// Unsubscribe removes the subscriber -> author edge. Fails with ErrNotFound
// if the author or the edge does not exist.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, subscriberID, authorID uuid.UUID) error {
	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	result := s.db.WithContext(ctx).
		Where("subscriber_id = ? AND author_id = ?", subscriberID, authorID).
		Delete(&models.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSubscriptions returns every author the subscriber follows, most recent
// subscription first, each annotated the same way Subscribe annotates.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, subscriberID uuid.UUID, recipesLimit *int) ([]AuthorProfile, error) {
	var authors []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.subscriber_id = ?", subscriberID).
		Order("subscriptions.created_at DESC").
		Find(&authors).Error
	if err != nil {
		return nil, err
	}

	profiles := make([]AuthorProfile, 0, len(authors))
	for _, author := range authors {
		profile, err := s.annotate(ctx, author, true, recipesLimit)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, nil
}

// IsSubscribed reports whether viewer follows author. Anonymous viewers are
// never subscribed.
func (s *SubscriptionService) IsSubscribed(ctx context.Context, viewer *uuid.UUID, authorID uuid.UUID) (bool, error) {
	if viewer == nil {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("subscriber_id = ? AND author_id = ?", *viewer, authorID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *SubscriptionService) annotate(ctx context.Context, author models.User, isSubscribed bool, recipesLimit *int) (*AuthorProfile, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ?", author.ID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Where("author_id = ?", author.ID).
		Order("created_at DESC")
	if recipesLimit != nil {
		query = query.Limit(*recipesLimit)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}

	return &AuthorProfile{
		User:         author,
		IsSubscribed: isSubscribed,
		RecipesCount: count,
		Recipes:      recipes,
	}, nil
}
