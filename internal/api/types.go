package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/platefeed/backend/internal/logger"
	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/service"
)

type registerRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type lineItemRequest struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int       `json:"amount" binding:"required,min=1"`
}

// recipeWriteRequest is the write representation: tags as bare identifiers,
// ingredients as {id, amount} pairs, image as a base64 data URI.
type recipeWriteRequest struct {
	Name        string            `json:"name" binding:"required"`
	Text        string            `json:"text" binding:"required"`
	CookingTime int               `json:"cooking_time" binding:"required,min=1"`
	Image       string            `json:"image"`
	Tags        []uuid.UUID       `json:"tags" binding:"required"`
	Ingredients []lineItemRequest `json:"ingredients" binding:"required"`
}

type userResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

type lineItemResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

type recipeResponse struct {
	ID               uuid.UUID          `json:"id"`
	Tags             []models.Tag       `json:"tags"`
	Author           userResponse       `json:"author"`
	Ingredients      []lineItemResponse `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	Name             string             `json:"name"`
	Image            string             `json:"image"`
	Text             string             `json:"text"`
	CookingTime      int                `json:"cooking_time"`
}

// recipeSummary is the compact shape returned by the toggle endpoints and
// embedded in subscription payloads.
type recipeSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

type authorResponse struct {
	userResponse
	Recipes      []recipeSummary `json:"recipes"`
	RecipesCount int64           `json:"recipes_count"`
}

type pageResponse struct {
	Count   int64       `json:"count"`
	Results interface{} `json:"results"`
}

func newUserResponse(u models.User, isSubscribed bool) userResponse {
	return userResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
}

func newRecipeSummary(r models.Recipe) recipeSummary {
	return recipeSummary{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.ImageURL,
		CookingTime: r.CookingTime,
	}
}

func newRecipeResponse(r models.Recipe, authorSubscribed, favorited, inCart bool) recipeResponse {
	items := make([]lineItemResponse, len(r.Ingredients))
	for i, li := range r.Ingredients {
		items[i] = lineItemResponse{
			ID:              li.IngredientID,
			Name:            li.Ingredient.Name,
			MeasurementUnit: li.Ingredient.MeasurementUnit,
			Amount:          li.Amount,
		}
	}
	tags := r.Tags
	if tags == nil {
		tags = []models.Tag{}
	}
	return recipeResponse{
		ID:               r.ID,
		Tags:             tags,
		Author:           newUserResponse(r.Author, authorSubscribed),
		Ingredients:      items,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Name:             r.Name,
		Image:            r.ImageURL,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}

func newAuthorResponse(p service.AuthorProfile) authorResponse {
	recipes := make([]recipeSummary, len(p.Recipes))
	for i, r := range p.Recipes {
		recipes[i] = newRecipeSummary(r)
	}
	return authorResponse{
		userResponse: newUserResponse(p.User, p.IsSubscribed),
		Recipes:      recipes,
		RecipesCount: p.RecipesCount,
	}
}

// handleServiceError maps domain errors onto HTTP statuses. Anything not in
// the taxonomy is a 500 with a generic body.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, service.ErrSelfSubscription):
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"detail": "you do not have permission to perform this action"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
	default:
		logger.Error("request failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
