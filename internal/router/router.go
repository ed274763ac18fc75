package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/platefeed/backend/internal/api"
	"github.com/platefeed/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(
	userHandler *api.UserHandler,
	tagHandler *api.TagHandler,
	ingredientHandler *api.IngredientHandler,
	recipeHandler *api.RecipeHandler,
	redisClient *redis.Client,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Mutation rate limiting only runs with a Redis backend configured.
	var limiter gin.HandlerFunc
	if redisClient != nil {
		limiter = middleware.NewMutationRateLimiter(redisClient).Middleware()
	}

	apiGroup := router.Group("/api")
	userHandler.RegisterRoutes(apiGroup)
	tagHandler.RegisterRoutes(apiGroup)
	ingredientHandler.RegisterRoutes(apiGroup)
	recipeHandler.RegisterRoutes(apiGroup, limiter)

	return router
}
