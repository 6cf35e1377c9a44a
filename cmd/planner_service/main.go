package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"focushub/internal/api/router"
	"focushub/internal/planner/app"
	"focushub/internal/planner/domain"
	"focushub/internal/planner/repository"
	plannerrouter "focushub/internal/planner/router"
	"focushub/pkg/config"
	"focushub/pkg/database"
	"focushub/pkg/logger"
	"focushub/pkg/mailer"
	"focushub/pkg/metrics"
	"focushub/pkg/token"

	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.PlannerService, config.EnvConfig.PlannerServiceLogPath)
	defer logger.Log.Sync()
	if !token.HasSecret() {
		logger.Log.Fatal("JWT_SECRET is not set, refusing to start")
	}
	cfg := config.LoadConfig[config.Planner](config.EnvConfig.PlannerService, config.EnvConfig.PlannerServiceYAMLPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. postgres: tasks and pomodoro sessions
	db, err := database.NewGormConnection(database.PostgresConnection(cfg.PostgreSQL))
	if err != nil {
		logger.Log.Fatal("Unable to connect to postgreSQL database after retries",
			zap.String("host", cfg.PostgreSQL.Host), zap.Error(err))
	}
	taskRepo := repository.NewTaskRepo(db)
	pomodoroRepo := repository.NewPomodoroRepo(db)
	if err := taskRepo.AutoMigrate(); err != nil {
		logger.Log.Fatal("task migration failed", zap.Error(err))
	}
	if err := pomodoroRepo.AutoMigrate(); err != nil {
		logger.Log.Fatal("pomodoro migration failed", zap.Error(err))
	}
	calendarRepo := repository.NewCalendarRepo(db)
	if err := calendarRepo.AutoMigrate(); err != nil {
		logger.Log.Fatal("calendar migration failed", zap.Error(err))
	}

	// 2. rabbitmq: overdue alert jobs
	queue := cfg.RabbitMQ.Queue
	if queue == "" {
		queue = domain.QueueName
	}
	rabbitConn, err := database.ConnectRabbitMQWithRetry(database.Connection{
		ConnectStr:    cfg.RabbitMQ.URL,
		RetryCount:    max(cfg.RabbitMQ.RetryCount, 1),
		RetryInterval: time.Duration(cfg.RabbitMQ.RetryInterval) * time.Second,
	})
	if err != nil {
		logger.Log.Fatal("connect rabbitmq err", zap.Error(err))
	}
	defer rabbitConn.Close()

	publishCh, err := database.GetRabbitMQChannelWithRetry(rabbitConn, 3, 2*time.Second)
	if err != nil {
		logger.Log.Fatal("open rabbitmq channel err", zap.Error(err))
	}
	defer publishCh.Close()
	if _, err := database.DeclareDurableQueue(publishCh, queue); err != nil {
		logger.Log.Fatal("declare queue err", zap.String("queue", queue), zap.Error(err))
	}

	consumeCh, err := database.GetRabbitMQChannelWithRetry(rabbitConn, 3, 2*time.Second)
	if err != nil {
		logger.Log.Fatal("open rabbitmq consumer channel err", zap.Error(err))
	}
	defer consumeCh.Close()

	// 3. mail
	var m mailer.Mailer = mailer.LogMailer{}
	if cfg.Mail.APIKey != "" {
		m = mailer.NewSendGrid(cfg.Mail.APIKey, cfg.Mail.AppName, cfg.Mail.From, "")
	} else {
		logger.Log.Warn("no sendgrid api key, overdue alerts are only logged")
	}

	consumer := app.NewConsumer(consumeCh, m, queue, cfg.Mail.LoginURL)
	go func() {
		if err := consumer.StartConsumer(ctx); err != nil {
			logger.Log.Error("overdue alert consumer exited", zap.Error(err))
		}
	}()

	// 4. scheduler
	loc := time.UTC
	if cfg.Scheduler.Timezone != "" {
		if loc, err = time.LoadLocation(cfg.Scheduler.Timezone); err != nil {
			logger.Log.Fatal("invalid scheduler timezone", zap.String("timezone", cfg.Scheduler.Timezone), zap.Error(err))
		}
	}
	scheduler, err := app.NewAlertScheduler(taskRepo, database.NewRabbitRepository(publishCh), queue, cfg.Scheduler.Cron, loc)
	if err != nil {
		logger.Log.Fatal("alert scheduler", zap.Error(err))
	}
	scheduler.Start()

	// 5. calendar link, optional
	var provider app.CalendarProvider
	if cfg.Calendar.ClientID != "" {
		provider = app.NewGoogleCalendarProvider(app.CalendarProviderConfig{
			ClientID:     cfg.Calendar.ClientID,
			ClientSecret: cfg.Calendar.ClientSecret,
			RedirectURL:  cfg.Calendar.RedirectURL,
			AuthURL:      cfg.Calendar.AuthURL,
			TokenURL:     cfg.Calendar.TokenURL,
			RevokeURL:    cfg.Calendar.RevokeURL,
		})
	} else {
		logger.Log.Warn("no google client id, calendar sync disabled")
	}

	// 6. fiber
	r := router.NewApp(config.EnvConfig.PlannerService, config.EnvConfig.PlannerServiceLogPath, metrics.New("planner"))
	plannerrouter.RegisterRoutes(r, app.NewPlannerHandler(
		app.NewTaskUseCase(taskRepo),
		app.NewPomodoroUseCase(pomodoroRepo, taskRepo),
		app.NewAnalyticsUseCase(taskRepo, pomodoroRepo),
	))
	plannerrouter.RegisterCalendarRoutes(r, app.NewCalendarHandler(
		app.NewCalendarUseCase(calendarRepo, provider, cfg.Calendar.CalendarID),
		cfg.Calendar.FrontendURL,
	))

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Log.Info("planner service shutting down")
		<-scheduler.Stop().Done()
		cancel()
		_ = r.ShutdownWithTimeout(10 * time.Second)
	}()

	port := ":" + cfg.Port
	logger.Log.Info("Planner Service listening", zap.String("port", port))
	if err := r.Listen(port); err != nil {
		logger.Log.Fatal("Failed to start Fiber", zap.Error(err))
	}
}
