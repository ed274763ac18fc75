package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/logger"
	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/types"
)

// ShoppingListService aggregates line items across the recipes in a user's
// cart into one total per ingredient name.
type ShoppingListService struct {
	db *gorm.DB
}

// NewShoppingListService creates a new ShoppingListService instance
func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Aggregate walks every line item of every recipe in userID's cart and sums
// amounts grouped by ingredient name. Items keep the order in which a name
// was first encountered: recipes oldest-created first, line items in recipe
// position order. The unit attached to a name is the first one seen; a later
// line item disagreeing on the unit is logged and its amount still merged,
// matching the list's display contract of one line per name.
//
// An empty cart yields an empty, non-nil list.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uuid.UUID) ([]types.ShoppingListItem, error) {
	inCart := s.db.Table("shopping_cart_items").
		Select("recipe_id").
		Where("user_id = ?", userID)

	var lineItems []models.RecipeIngredient
	err := s.db.WithContext(ctx).
		Joins("JOIN recipes ON recipes.id = recipe_ingredients.recipe_id").
		Where("recipe_ingredients.recipe_id IN (?)", inCart).
		Order("recipes.created_at, recipe_ingredients.position").
		Preload("Ingredient").
		Find(&lineItems).Error
	if err != nil {
		return nil, err
	}

	list := make([]types.ShoppingListItem, 0, len(lineItems))
	index := make(map[string]int, len(lineItems))
	for _, item := range lineItems {
		name := item.Ingredient.Name
		unit := item.Ingredient.MeasurementUnit
		i, seen := index[name]
		if !seen {
			index[name] = len(list)
			list = append(list, types.ShoppingListItem{
				Name:            name,
				Amount:          item.Amount,
				MeasurementUnit: unit,
			})
			continue
		}
		if list[i].MeasurementUnit != unit {
			logger.Warn("shopping list merges ingredients with conflicting units",
				zap.String("ingredient", name),
				zap.String("kept_unit", list[i].MeasurementUnit),
				zap.String("dropped_unit", unit))
		}
		list[i].Amount += item.Amount
	}

	return list, nil
}
