package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/platefeed/backend/internal/middleware"
	"github.com/platefeed/backend/internal/service"
)

type UserHandler struct {
	auth          *service.AuthService
	subscriptions *service.SubscriptionService
}

func NewUserHandler(auth *service.AuthService, subscriptions *service.SubscriptionService) *UserHandler {
	return &UserHandler{auth: auth, subscriptions: subscriptions}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}

	users := router.Group("/users")
	{
		users.GET("", middleware.OptionalAuthMiddleware(h.auth), h.ListUsers)
		users.GET("/me", middleware.AuthMiddleware(h.auth), h.Me)
		users.GET("/subscriptions", middleware.AuthMiddleware(h.auth), h.ListSubscriptions)
		users.GET("/:id", middleware.OptionalAuthMiddleware(h.auth), h.GetUser)
		users.POST("/:id/subscribe", middleware.AuthMiddleware(h.auth), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.AuthMiddleware(h.auth), h.Unsubscribe)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Email, req.Username, req.FirstName, req.LastName, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newUserResponse(*user, false))
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auth_token": token})
}

func (h *UserHandler) Me(c *gin.Context) {
	viewer := middleware.ViewerID(c)
	user, err := h.auth.GetUser(c.Request.Context(), *viewer)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(*user, false))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.auth.GetUser(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	viewer := middleware.ViewerID(c)
	subscribed, err := h.subscriptions.IsSubscribed(c.Request.Context(), viewer, user.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(*user, subscribed))
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	viewer := middleware.ViewerID(c)
	results := make([]userResponse, len(users))
	for i, u := range users {
		subscribed, err := h.subscriptions.IsSubscribed(c.Request.Context(), viewer, u.ID)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		results[i] = newUserResponse(u, subscribed)
	}
	c.JSON(http.StatusOK, pageResponse{Count: int64(len(results)), Results: results})
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	viewer := middleware.ViewerID(c)
	profiles, err := h.subscriptions.ListSubscriptions(c.Request.Context(), *viewer, recipesLimit(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	results := make([]authorResponse, len(profiles))
	for i, p := range profiles {
		results[i] = newAuthorResponse(p)
	}
	c.JSON(http.StatusOK, pageResponse{Count: int64(len(results)), Results: results})
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	viewer := middleware.ViewerID(c)
	profile, err := h.subscriptions.Subscribe(c.Request.Context(), *viewer, authorID, recipesLimit(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newAuthorResponse(*profile))
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	viewer := middleware.ViewerID(c)
	if err := h.subscriptions.Unsubscribe(c.Request.Context(), *viewer, authorID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// recipesLimit reads the optional recipes_limit query parameter; nil means
// unlimited.
func recipesLimit(c *gin.Context) *int {
	if limit, ok := parsePositiveInt(c.Query("recipes_limit")); ok {
		return &limit
	}
	return nil
}
