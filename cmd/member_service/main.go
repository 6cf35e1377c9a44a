package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"focushub/internal/api/router"
	"focushub/internal/member/app"
	"focushub/internal/member/repository"
	memberrouter "focushub/internal/member/router"
	"focushub/pkg/config"
	"focushub/pkg/database"
	"focushub/pkg/logger"
	"focushub/pkg/metrics"
	"focushub/pkg/token"

	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.MemberService, config.EnvConfig.MemberServiceLogPath)
	defer logger.Log.Sync()
	if !token.HasSecret() {
		logger.Log.Fatal("JWT_SECRET is not set, refusing to start")
	}
	cfg := config.LoadConfig[config.Member](config.EnvConfig.MemberService, config.EnvConfig.MemberServiceYAMLPath)

	token.SetExpiration(cfg.TokenTTL)
	sessionTTL := cfg.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. postgres: members
	pool, err := database.NewDatabaseConnection(database.PostgresConnection(cfg.PostgreSQL))
	if err != nil {
		logger.Log.Fatal("Unable to connect to postgreSQL database after retries",
			zap.String("host", cfg.PostgreSQL.Host), zap.Error(err))
	}
	defer pool.Close()

	if err := repository.Migrate(ctx, pool); err != nil {
		logger.Log.Fatal("member table migration failed", zap.Error(err))
	}

	// 2. redis: sessions and presence transitions
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal("connect redis err", zap.Error(err))
	}
	defer redisClient.Close()

	memberRepo := repository.NewMemberRepository(pool)
	sessions := repository.NewSessionRepository(redisClient)
	usecase := app.NewMemberUseCase(memberRepo, sessions, sessionTTL, nil)

	channel := cfg.Redis.PresenceChannel
	if channel == "" {
		channel = "presence:transitions"
	}
	if err := app.NewPresenceSubscriber(usecase, database.NewRedisPubSub(redisClient), channel).Start(ctx); err != nil {
		logger.Log.Warn("presence subscriber unavailable, member status will not follow chat", zap.Error(err))
	}

	// 3. fiber
	r := router.NewApp(config.EnvConfig.MemberService, config.EnvConfig.MemberServiceLogPath, metrics.New("member"))
	memberrouter.RegisterRoutes(r, app.NewMemberHandler(usecase))

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Log.Info("member service shutting down")
		cancel()
		_ = r.ShutdownWithTimeout(10 * time.Second)
	}()

	port := ":" + cfg.Port
	logger.Log.Info("Member Service listening", zap.String("port", port))
	if err := r.Listen(port); err != nil {
		logger.Log.Fatal("Failed to start Fiber", zap.Error(err))
	}
}
