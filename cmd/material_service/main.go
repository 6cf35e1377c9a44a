package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"focushub/internal/api/router"
	"focushub/internal/material/app"
	"focushub/internal/material/domain"
	"focushub/internal/material/repository"
	materialrouter "focushub/internal/material/router"
	"focushub/pkg/config"
	"focushub/pkg/database"
	"focushub/pkg/logger"
	"focushub/pkg/metrics"
	"focushub/pkg/token"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.MaterialService, config.EnvConfig.MaterialServiceLogPath)
	defer logger.Log.Sync()
	if !token.HasSecret() {
		logger.Log.Fatal("JWT_SECRET is not set, refusing to start")
	}
	cfg := config.LoadConfig[config.Material](config.EnvConfig.MaterialService, config.EnvConfig.MaterialServiceYAMLPath)

	maxFileSize := cfg.MaxFileSize
	if maxFileSize <= 0 {
		maxFileSize = domain.DefaultMaxFileSize
	}

	// 1. mongo: material metadata
	ctx := context.Background()
	mongo, err := database.NewMongoDB(ctx, database.MongoConnection(cfg.MongoDB), cfg.MongoDB.Database)
	if err != nil {
		logger.Log.Fatal("Unable to connect to mongoDB database after retries", zap.Error(err))
	}
	defer mongo.Close(ctx)

	if err := repository.EnsureMaterialIndexes(ctx, mongo.Database); err != nil {
		logger.Log.Warn("ensure indexes failed", zap.String("collection", "materials"), zap.Error(err))
	}

	// 2. minio: material files
	store, err := database.NewMinIOConnection(database.MinIOConnection{
		Endpoint:      cfg.MinIO.Endpoint,
		User:          cfg.MinIO.User,
		Password:      cfg.MinIO.Password,
		BucketName:    cfg.MinIO.Bucket,
		UseSSL:        cfg.MinIO.UseSSL,
		RetryCount:    max(cfg.MinIO.RetryCount, 1),
		RetryInterval: time.Duration(cfg.MinIO.RetryInterval) * time.Second,
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect to minio after retries",
			zap.String("endpoint", cfg.MinIO.Endpoint), zap.Error(err))
	}

	usecase := app.NewMaterialUseCase(repository.NewMongoMaterialRepository(mongo.Database), store, maxFileSize, cfg.URLExpiry)

	// 3. fiber, body limit leaves room for the multipart envelope
	r := router.NewAppWithConfig(fiber.Config{
		AppName:   config.EnvConfig.MaterialService,
		BodyLimit: int(maxFileSize) + 1<<20,
	}, config.EnvConfig.MaterialServiceLogPath, metrics.New("material"))
	materialrouter.RegisterRoutes(r, app.NewMaterialHandler(usecase))

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Log.Info("material service shutting down")
		_ = r.ShutdownWithTimeout(10 * time.Second)
	}()

	port := ":" + cfg.Port
	logger.Log.Info("Material Service listening", zap.String("port", port))
	if err := r.Listen(port); err != nil {
		logger.Log.Fatal("Failed to start Fiber", zap.Error(err))
	}
}
