package router

import (
	"focushub/internal/member/app"
	"focushub/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes auth endpoints
func RegisterRoutes(r *fiber.App, h *app.MemberHandler) {
	auth := r.Group("/auth")
	auth.Post("/signup", h.Signup)
	auth.Post("/login", h.Login)

	jwt := middlewares.JWTMiddleware()
	auth.Post("/logout", jwt, h.Logout)
	auth.Get("/me", jwt, h.Me)
	auth.Get("/students", jwt, h.Students)
	auth.Get("/session", jwt, h.Session)
	auth.Post("/session/refresh", jwt, h.RefreshSession)
}
