package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/api"
	"github.com/platefeed/backend/internal/database"
	"github.com/platefeed/backend/internal/logger"
	"github.com/platefeed/backend/internal/router"
	"github.com/platefeed/backend/internal/server"
	"github.com/platefeed/backend/internal/service"
)

func main() {
	logger.Init()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := database.New(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis is optional; without it mutation rate limiting is skipped.
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
		redisClient = nil
	}

	// Recipe images land on S3 when a bucket is configured, on local disk
	// otherwise.
	var storage service.ImageStorage
	if cfg.S3BucketName != "" {
		s3Cfg, err := config.NewS3Config(context.Background(), cfg.S3BucketName)
		if err != nil {
			logger.Fatal("failed to configure S3 storage", zap.Error(err))
		}
		storage = service.NewS3Storage(s3Cfg)
	} else {
		storage = service.NewLocalStorage(cfg.MediaDir)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret)
	subscriptionService := service.NewSubscriptionService(db)
	recipeService := service.NewRecipeService(db)
	markService := service.NewMarkService(db)
	shoppingListService := service.NewShoppingListService(db)
	imageService := service.NewImageService(storage)

	engine := router.SetupRouter(
		api.NewUserHandler(authService, subscriptionService),
		api.NewTagHandler(service.NewTagService(db)),
		api.NewIngredientHandler(service.NewIngredientService(db)),
		api.NewRecipeHandler(recipeService, markService, subscriptionService, shoppingListService, imageService, authService),
		redisClient,
	)

	srv := server.New(engine, cfg.ServerHost+":"+cfg.ServerPort)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}
