package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// MarkKind selects which user-to-recipe mark a toggle operates on.
type MarkKind string

const (
	MarkFavorite MarkKind = "favorite"
	MarkCart     MarkKind = "shopping_cart"
)

// MarkService implements the add/remove toggle shared by favorites and the
// shopping cart. Duplicate suppression is delegated to the unique index on
// the mark table; a racing insert comes back as gorm.ErrDuplicatedKey and is
// reported exactly like the pre-checked conflict.
type MarkService struct {
	db *gorm.DB
}

// NewMarkService creates a new MarkService instance
func NewMarkService(db *gorm.DB) *MarkService {
	return &MarkService{db: db}
}

// AddMark marks a recipe for a user and returns the marked recipe. Fails
// with ErrNotFound if the recipe is absent and ErrAlreadyExists on a
// duplicate mark.
func (s *MarkService) AddMark(ctx context.Context, userID, recipeID uuid.UUID, kind MarkKind) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var err error
	switch kind {
	case MarkFavorite:
		err = s.db.WithContext(ctx).Create(&models.Favorite{UserID: userID, RecipeID: recipeID}).Error
	case MarkCart:
		err = s.db.WithContext(ctx).Create(&models.CartItem{UserID: userID, RecipeID: recipeID}).Error
	default:
		return nil, validationError("unknown mark kind %q", kind)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return &recipe, nil
}

// RemoveMark deletes a mark. Fails with ErrNotFound if either the recipe or
// the mark does not exist.
func (s *MarkService) RemoveMark(ctx context.Context, userID, recipeID uuid.UUID, kind MarkKind) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	var result *gorm.DB
	switch kind {
	case MarkFavorite:
		result = s.db.WithContext(ctx).
			Where("user_id = ? AND recipe_id = ?", userID, recipeID).
			Delete(&models.Favorite{})
	case MarkCart:
		result = s.db.WithContext(ctx).
			Where("user_id = ? AND recipe_id = ?", userID, recipeID).
			Delete(&models.CartItem{})
	default:
		return validationError("unknown mark kind %q", kind)
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Annotations reports which of the given recipes the viewer has favorited
// and which are in the viewer's cart. A nil viewer yields empty sets.
func (s *MarkService) Annotations(ctx context.Context, viewer *uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, map[uuid.UUID]bool, error) {
	favorited := make(map[uuid.UUID]bool)
	inCart := make(map[uuid.UUID]bool)
	if viewer == nil || len(recipeIDs) == 0 {
		return favorited, inCart, nil
	}

	var favorites []models.Favorite
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id IN ?", *viewer, recipeIDs).
		Find(&favorites).Error
	if err != nil {
		return nil, nil, err
	}
	for _, f := range favorites {
		favorited[f.RecipeID] = true
	}

	var cartItems []models.CartItem
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id IN ?", *viewer, recipeIDs).
		Find(&cartItems).Error
	if err != nil {
		return nil, nil, err
	}
	for _, ci := range cartItems {
		inCart[ci.RecipeID] = true
	}

	return favorited, inCart, nil
}
