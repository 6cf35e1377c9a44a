package middlewares

import (
	"strconv"
	"time"

	"focushub/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

// MetricsMiddleware records request count, latency and in-flight gauge per route
func MetricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}

		start := time.Now()
		m.HTTPRequestsInFlight.Inc()

		err := c.Next()

		m.HTTPRequestsInFlight.Dec()

		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}

		m.HTTPRequestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}
