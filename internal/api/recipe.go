package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/platefeed/backend/internal/middleware"
	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/pdf"
	"github.com/platefeed/backend/internal/service"
)

const defaultPageSize = 10

type RecipeHandler struct {
	recipes       *service.RecipeService
	marks         *service.MarkService
	subscriptions *service.SubscriptionService
	shoppingList  *service.ShoppingListService
	images        *service.ImageService
	authService   middleware.TokenValidator
}

func NewRecipeHandler(
	recipes *service.RecipeService,
	marks *service.MarkService,
	subscriptions *service.SubscriptionService,
	shoppingList *service.ShoppingListService,
	images *service.ImageService,
	authService middleware.TokenValidator,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:       recipes,
		marks:         marks,
		subscriptions: subscriptions,
		shoppingList:  shoppingList,
		images:        images,
		authService:   authService,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, limiter gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuthMiddleware(h.authService), h.ListRecipes)
		recipes.GET("/download_shopping_cart", middleware.AuthMiddleware(h.authService), h.DownloadShoppingCart)
		recipes.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetRecipe)

		authed := recipes.Group("", middleware.AuthMiddleware(h.authService))
		{
			mutating := authed.Group("")
			if limiter != nil {
				mutating.Use(limiter)
			}
			mutating.POST("", h.CreateRecipe)
			mutating.PATCH("/:id", h.UpdateRecipe)
			mutating.DELETE("/:id", h.DeleteRecipe)

			authed.POST("/:id/favorite", h.AddFavorite)
			authed.DELETE("/:id/favorite", h.RemoveFavorite)
			authed.POST("/:id/shopping_cart", h.AddToCart)
			authed.DELETE("/:id/shopping_cart", h.RemoveFromCart)
		}
	}
}

// parseFilter reads the listing query parameters. Absent or false-valued
// boolean filters add no restriction.
func parseFilter(c *gin.Context) (service.RecipeFilter, error) {
	f := service.RecipeFilter{
		TagSlugs: c.QueryArray("tags"),
		Viewer:   middleware.ViewerID(c),
		Page:     1,
		Limit:    defaultPageSize,
	}

	if author := c.Query("author"); author != "" {
		id, err := uuid.Parse(author)
		if err != nil {
			return f, err
		}
		f.AuthorID = &id
	}

	f.Favorited = isTruthy(c.Query("is_favorited"))
	f.InCart = isTruthy(c.Query("is_in_shopping_cart"))

	if page, ok := parsePositiveInt(c.Query("page")); ok {
		f.Page = page
	}
	if limit, ok := parsePositiveInt(c.Query("limit")); ok {
		f.Limit = limit
	}
	return f, nil
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
		return
	}

	recipes, total, err := h.recipes.ListRecipes(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	results, err := h.serializeRecipes(c, filter.Viewer, recipes)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResponse{Count: total, Results: results})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), recipeID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	viewer := middleware.ViewerID(c)
	results, err := h.serializeRecipes(c, viewer, []models.Recipe{*recipe})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, results[0])
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req recipeWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Image == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}

	viewer := middleware.ViewerID(c)
	input, err := h.buildInput(c, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), *viewer, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	results, err := h.serializeRecipes(c, viewer, []models.Recipe{*recipe})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, results[0])
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	var req recipeWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	viewer := middleware.ViewerID(c)
	input, err := h.buildInput(c, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), *viewer, recipeID, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	results, err := h.serializeRecipes(c, viewer, []models.Recipe{*recipe})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, results[0])
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	viewer := middleware.ViewerID(c)
	if err := h.recipes.DeleteRecipe(c.Request.Context(), *viewer, recipeID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.addMark(c, service.MarkFavorite)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.removeMark(c, service.MarkFavorite)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addMark(c, service.MarkCart)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeMark(c, service.MarkCart)
}

func (h *RecipeHandler) addMark(c *gin.Context, kind service.MarkKind) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	viewer := middleware.ViewerID(c)
	recipe, err := h.marks.AddMark(c.Request.Context(), *viewer, recipeID, kind)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newRecipeSummary(*recipe))
}

func (h *RecipeHandler) removeMark(c *gin.Context, kind service.MarkKind) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	viewer := middleware.ViewerID(c)
	if err := h.marks.RemoveMark(c.Request.Context(), *viewer, recipeID, kind); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart aggregates the caller's cart and streams it as a PDF
// attachment. An empty cart still produces a valid document.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	viewer := middleware.ViewerID(c)
	items, err := h.shoppingList.Aggregate(c.Request.Context(), *viewer)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	document, err := pdf.Render("Shopping list", items)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_list.pdf"`)
	c.Data(http.StatusOK, "application/pdf", document)
}

// buildInput converts the write representation into service input, decoding
// and storing the inline image when one is supplied.
func (h *RecipeHandler) buildInput(c *gin.Context, req recipeWriteRequest) (service.RecipeInput, error) {
	input := service.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
	}
	for _, li := range req.Ingredients {
		input.Ingredients = append(input.Ingredients, service.LineItemInput{
			IngredientID: li.ID,
			Amount:       li.Amount,
		})
	}

	if req.Image != "" {
		url, err := h.images.StoreRecipeImage(c.Request.Context(), req.Image)
		if err != nil {
			return input, err
		}
		input.ImageURL = url
	}
	return input, nil
}

// serializeRecipes annotates each recipe for the viewer: mark state from the
// toggle tables and the author's subscription state.
func (h *RecipeHandler) serializeRecipes(c *gin.Context, viewer *uuid.UUID, recipes []models.Recipe) ([]recipeResponse, error) {
	ids := make([]uuid.UUID, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
	}

	favorited, inCart, err := h.marks.Annotations(c.Request.Context(), viewer, ids)
	if err != nil {
		return nil, err
	}

	subscribed := make(map[uuid.UUID]bool)
	for _, r := range recipes {
		if _, seen := subscribed[r.AuthorID]; seen {
			continue
		}
		s, err := h.subscriptions.IsSubscribed(c.Request.Context(), viewer, r.AuthorID)
		if err != nil {
			return nil, err
		}
		subscribed[r.AuthorID] = s
	}

	results := make([]recipeResponse, len(recipes))
	for i, r := range recipes {
		results[i] = newRecipeResponse(r, subscribed[r.AuthorID], favorited[r.ID], inCart[r.ID])
	}
	return results, nil
}

func isTruthy(value string) bool {
	return value == "1" || value == "true"
}

func parsePositiveInt(value string) (int, bool) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
