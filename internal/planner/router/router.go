package router

import (
	"focushub/internal/planner/app"
	"focushub/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes task, pomodoro and analytics endpoints, all JWT protected
func RegisterRoutes(r *fiber.App, h *app.PlannerHandler) {
	jwt := middlewares.JWTMiddleware()

	tasks := r.Group("/tasks", jwt)
	tasks.Get("/", h.ListTasks)
	tasks.Post("/", h.CreateTask)
	tasks.Put("/:id", h.UpdateTask)
	tasks.Delete("/:id", h.DeleteTask)
	tasks.Patch("/:id/toggle", h.ToggleTask)
	tasks.Patch("/:id/toggle-alert", h.ToggleAlert)

	pomodoro := r.Group("/pomodoro", jwt)
	pomodoro.Post("/", h.SaveSession)
	pomodoro.Get("/", h.ListSessions)
	pomodoro.Get("/stats", h.SessionStats)

	analytics := r.Group("/analytics", jwt)
	analytics.Get("/summary", h.Summary)
	analytics.Get("/focus-time", h.FocusTime)
}

// RegisterCalendarRoutes the callback is reached from the provider's redirect and carries no JWT,
// it is registered before the group so the group's JWT middleware never runs for it
func RegisterCalendarRoutes(r *fiber.App, h *app.CalendarHandler) {
	r.Get("/calendar/google/callback", h.Callback)

	calendar := r.Group("/calendar", middlewares.JWTMiddleware())
	calendar.Get("/google", h.Connect)
	calendar.Get("/status", h.Status)
	calendar.Post("/disconnect", h.Disconnect)
}
