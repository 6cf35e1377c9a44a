package router

import (
	"context"

	"focushub/internal/chat/app"
	"focushub/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes websocket endpoint plus message, forum and presence REST
func RegisterRoutes(r *fiber.App, gate *app.HandshakeGate, chatWebsocket *app.ChatWebsocketHandler, h *app.ChatHandler) {
	r.Get("/ws", gate.Middleware(), websocket.New(func(c *websocket.Conn) {
		chatWebsocket.HandleConnection(context.Background(), c)
	}))

	forum := r.Group("/forum")
	forum.Get("/posts", h.CommunityFeed)
	forum.Get("/posts/:id", h.GetPost)
	forum.Get("/comments/:commentId/replies", h.Replies)
	forum.Get("/tags/trending", h.TrendingTags)

	auth := middlewares.JWTMiddleware()
	forum.Post("/posts", auth, h.CreatePost)
	forum.Get("/my-posts", auth, h.MyPosts)
	forum.Put("/posts/:id", auth, h.UpdatePost)

	messages := r.Group("/messages", auth)
	messages.Get("/history/:otherUserId", h.History)
	messages.Get("/unread", h.Unread)
	messages.Post("/read/:otherUserId", h.MarkRead)

	r.Get("/presence/online", auth, h.Online)
}
