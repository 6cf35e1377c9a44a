package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"focushub/internal/api/router"
	"focushub/internal/chat/app"
	"focushub/internal/chat/repository"
	chatrouter "focushub/internal/chat/router"
	"focushub/pkg"
	"focushub/pkg/config"
	"focushub/pkg/database"
	"focushub/pkg/logger"
	"focushub/pkg/metrics"
	"focushub/pkg/token"
	"focushub/pkg/test_tool"

	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	defer logger.Log.Sync()
	if !token.HasSecret() {
		logger.Log.Fatal("JWT_SECRET is not set, refusing to start")
	}
	cfg := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)

	testtool.StartPprof()

	// 1. mongo: messages, posts, comments
	ctx := context.Background()
	mongo, err := database.NewMongoDB(ctx, database.MongoConnection(cfg.MongoDB), cfg.MongoDB.Database)
	if err != nil {
		logger.Log.Fatal("Unable to connect to mongoDB database after retries", zap.Error(err))
	}
	defer mongo.Close(ctx)

	for name, ensure := range map[string]func(context.Context) error{
		"messages": func(ctx context.Context) error { return repository.EnsureMessageIndexes(ctx, mongo.Database) },
		"posts":    func(ctx context.Context) error { return repository.EnsurePostIndexes(ctx, mongo.Database) },
		"comments": func(ctx context.Context) error { return repository.EnsureCommentIndexes(ctx, mongo.Database) },
	} {
		if err := ensure(ctx); err != nil {
			logger.Log.Warn("ensure indexes failed", zap.String("collection", name), zap.Error(err))
		}
	}

	// 2. redis: presence relay
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal("connect redis err", zap.Error(err))
	}
	defer redisClient.Close()

	channel := cfg.Redis.PresenceChannel
	if channel == "" {
		channel = "presence:transitions"
	}
	relay := repository.NewRedisPresenceRelay(database.NewRedisPubSub(redisClient), channel)

	// 3. kafka: activity stream, optional
	var activity repository.ActivityPublisher = repository.NopActivityPublisher{}
	// an unset ${KAFKA_BROKER} leaves an empty entry
	brokers := pkg.Remove(cfg.Kafka.Brokers, "")
	if len(brokers) > 0 {
		writer, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
			Brokers:       brokers,
			Topic:         cfg.Kafka.Topic,
			RetryCount:    max(cfg.Kafka.RetryCount, 1),
			RetryInterval: time.Duration(cfg.Kafka.RetryInterval) * time.Second,
		})
		if err != nil {
			logger.Log.Warn("kafka unavailable, activity stream disabled", zap.Error(err))
		} else {
			activity = repository.NewKafkaActivityPublisher(writer)
		}
	}
	defer activity.Close()

	// 4. realtime core
	m := metrics.New("chat")
	presence := app.NewPresenceTracker(app.WithPresenceNotifier(relay), app.WithPresenceMetrics(m))
	defer presence.Close()
	topics := app.NewTopics()

	msgRepo := repository.NewMongoMessageRepository(mongo.Database)
	postRepo := repository.NewMongoPostRepository(mongo.Database)
	commentRepo := repository.NewMongoCommentRepository(mongo.Database)

	messageRouter := app.NewMessageRouter(msgRepo, postRepo, commentRepo, presence, topics,
		app.WithActivityPublisher(activity),
		app.WithRouterMetrics(m),
		app.WithPersistTimeout(cfg.PersistTimeout),
	)
	wsHandler := app.NewChatWebsocketHandler(presence, topics, app.NewDispatcher(messageRouter, topics, m), m, cfg.SendBuffer, cfg.PingInterval)
	restHandler := app.NewChatHandler(
		app.NewMessageHistoryUseCase(msgRepo),
		app.NewForumUseCase(postRepo, commentRepo, presence),
		presence,
	)

	// 5. fiber
	r := router.NewApp(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath, m)
	chatrouter.RegisterRoutes(r, app.NewHandshakeGate(), wsHandler, restHandler)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Log.Info("chat service shutting down")
		_ = r.ShutdownWithTimeout(10 * time.Second)
	}()

	port := ":" + cfg.Port
	logger.Log.Info("Chat Service listening", zap.String("port", port))
	if err := r.Listen(port); err != nil {
		logger.Log.Fatal("Failed to start Fiber", zap.Error(err))
	}
}
