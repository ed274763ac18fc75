package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// RecipeFilter carries the query parameters of a recipe listing. Zero-valued
// fields are pass-through: they add no restriction.
type RecipeFilter struct {
	TagSlugs []string
	AuthorID *uuid.UUID
	// Favorited and InCart restrict to recipes marked by Viewer. They are
	// ignored when Viewer is nil (anonymous requests never error here).
	Favorited bool
	InCart    bool
	Viewer    *uuid.UUID

	Page  int
	Limit int
}

// LineItemInput is an ingredient reference with a quantity, as submitted on
// recipe create/update.
type LineItemInput struct {
	IngredientID uuid.UUID
	Amount       int
}

// RecipeInput is the write representation of a recipe.
type RecipeInput struct {
	Name        string
	Text        string
	CookingTime int
	ImageURL    string
	TagIDs      []uuid.UUID
	Ingredients []LineItemInput
}

// RecipeService handles recipe queries and author-scoped mutations
type RecipeService struct {
	db *gorm.DB
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// filtered builds the conjunction of the supplied filters over the recipe
// table. Relation filters go through IN-subqueries so a recipe carrying
// several matching tags still appears once.
func (s *RecipeService) filtered(ctx context.Context, f RecipeFilter) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if len(f.TagSlugs) > 0 {
		tagged := s.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}

	if f.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *f.AuthorID)
	}

	if f.Viewer != nil {
		if f.Favorited {
			marked := s.db.Table("favorites").
				Select("recipe_id").
				Where("user_id = ?", *f.Viewer)
			query = query.Where("recipes.id IN (?)", marked)
		}
		if f.InCart {
			marked := s.db.Table("shopping_cart_items").
				Select("recipe_id").
				Where("user_id = ?", *f.Viewer)
			query = query.Where("recipes.id IN (?)", marked)
		}
	}

	return query
}

// ListRecipes returns the filtered page of recipes, newest first, along with
// the total match count.
func (s *RecipeService) ListRecipes(ctx context.Context, f RecipeFilter) ([]models.Recipe, int64, error) {
	var total int64
	if err := s.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := s.filtered(ctx, f).Order("recipes.created_at DESC")
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * f.Limit).Limit(f.Limit)
	}

	var recipes []models.Recipe
	err := query.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.position")
		}).
		Preload("Ingredients.Ingredient").
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// GetRecipe retrieves a recipe by ID with its associations
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.position")
		}).
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// CreateRecipe validates the input and creates the recipe together with its
// tag set and line items in one transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, input RecipeInput) (*models.Recipe, error) {
	if err := validateRecipeInput(input); err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		Name:        input.Name,
		Text:        input.Text,
		CookingTime: input.CookingTime,
		ImageURL:    input.ImageURL,
		AuthorID:    authorID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveTags(tx, input.TagIDs)
		if err != nil {
			return err
		}
		if err := checkIngredientsExist(tx, input.Ingredients); err != nil {
			return err
		}

		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}
		return createLineItems(tx, recipe.ID, input.Ingredients)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, recipe.ID)
}

// UpdateRecipe replaces the recipe's fields, tag set and line items
// atomically. A failed update leaves the stored recipe untouched.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, recipeID uuid.UUID, input RecipeInput) (*models.Recipe, error) {
	if err := validateRecipeInput(input); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if recipe.AuthorID != userID {
			return ErrForbidden
		}

		tags, err := resolveTags(tx, input.TagIDs)
		if err != nil {
			return err
		}
		if err := checkIngredientsExist(tx, input.Ingredients); err != nil {
			return err
		}

		recipe.Name = input.Name
		recipe.Text = input.Text
		recipe.CookingTime = input.CookingTime
		if input.ImageURL != "" {
			recipe.ImageURL = input.ImageURL
		}
		if err := tx.Save(&recipe).Error; err != nil {
			return err
		}

		if err := tx.Model(&recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}
		// Clear-then-recreate; partial failures roll the whole update back.
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return createLineItems(tx, recipe.ID, input.Ingredients)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, recipeID)
}

// DeleteRecipe removes a recipe owned by userID together with its dependent
// rows. Dependents are cleaned explicitly in the same transaction so the
// cascade does not rely on the dialect honoring FK rules.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if recipe.AuthorID != userID {
			return ErrForbidden
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

// validateRecipeInput rejects empty or duplicated tag/ingredient sets before
// any row is written.
func validateRecipeInput(input RecipeInput) error {
	if input.CookingTime < 1 {
		return validationError("cooking_time must be at least 1")
	}
	if len(input.TagIDs) == 0 {
		return validationError("at least one tag is required")
	}
	if len(input.Ingredients) == 0 {
		return validationError("at least one ingredient is required")
	}

	seenTags := make(map[uuid.UUID]struct{}, len(input.TagIDs))
	for _, id := range input.TagIDs {
		if _, dup := seenTags[id]; dup {
			return validationError("duplicate tag %s", id)
		}
		seenTags[id] = struct{}{}
	}

	seenIngredients := make(map[uuid.UUID]struct{}, len(input.Ingredients))
	for _, item := range input.Ingredients {
		if item.Amount < 1 {
			return validationError("ingredient amount must be at least 1")
		}
		if _, dup := seenIngredients[item.IngredientID]; dup {
			return validationError("duplicate ingredient %s", item.IngredientID)
		}
		seenIngredients[item.IngredientID] = struct{}{}
	}
	return nil
}

func resolveTags(tx *gorm.DB, ids []uuid.UUID) ([]models.Tag, error) {
	var tags []models.Tag
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, validationError("unknown tag in submission")
	}
	return tags, nil
}

func checkIngredientsExist(tx *gorm.DB, items []LineItemInput) error {
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.IngredientID
	}
	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return validationError("unknown ingredient in submission")
	}
	return nil
}

func createLineItems(tx *gorm.DB, recipeID uuid.UUID, items []LineItemInput) error {
	lineItems := make([]models.RecipeIngredient, len(items))
	for i, item := range items {
		lineItems[i] = models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.IngredientID,
			Amount:       item.Amount,
			Position:     i,
		}
	}
	return tx.Create(&lineItems).Error
}
