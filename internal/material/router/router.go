package router

import (
	"focushub/internal/material/app"
	"focushub/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes material endpoints, all JWT protected
func RegisterRoutes(r *fiber.App, h *app.MaterialHandler) {
	materials := r.Group("/materials", middlewares.JWTMiddleware())
	materials.Post("/", h.Upload)
	materials.Get("/", h.List)
	materials.Get("/stats", h.Stats)
	materials.Get("/:id", h.Get)
	materials.Get("/:id/download", h.Download)
	materials.Delete("/:id", h.Delete)
}
