package router

import (
	"os"
	"path/filepath"

	"focushub/internal/api/handlers"
	"focushub/pkg/logger"
	"focushub/pkg/metrics"
	"focushub/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

// NewApp fiber app with the access log, http metrics and the shared routes
// (/ health, /debug, /metrics) every service exposes
func NewApp(service, logDir string, m *metrics.Metrics) *fiber.App {
	return NewAppWithConfig(fiber.Config{AppName: service}, logDir, m)
}

// NewAppWithConfig NewApp with a caller supplied fiber config, e.g. a larger BodyLimit for uploads
func NewAppWithConfig(cfg fiber.Config, logDir string, m *metrics.Metrics) *fiber.App {
	service := cfg.AppName
	app := fiber.New(cfg)

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			logger.Log.Warn("access log dir", zap.Error(err))
		} else if file, err := os.OpenFile(filepath.Join(logDir, "access.log"), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666); err != nil {
			logger.Log.Warn("access log file", zap.Error(err))
		} else {
			app.Use(fiberlogger.New(fiberlogger.Config{
				Output: file,
			}))
		}
	}

	if m != nil {
		app.Use(middlewares.MetricsMiddleware(m))
		app.Get("/metrics", m.Handler())
	}

	app.Get("/", handlers.ConnectCheck(service))
	app.Post("/debug", handlers.DebugLogFlag(service))
	return app
}
