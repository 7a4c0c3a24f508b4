package routes

import (
	"github.com/anjiri1684/drive_tutor/handlers"
	"github.com/anjiri1684/drive_tutor/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func MessagingRoutes(api fiber.Router, h *handlers.Handlers) {
	protected := middleware.Protected(h.JWTSecret)

	api.Get("/messages/unread", protected, h.UnreadCount)
	chat := api.Group("/packages/:packageId/messages", protected)
	chat.Get("", h.ListMessages)
	chat.Post("", h.SendMessage)
	chat.Post("/read", h.MarkMessagesRead)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws", websocket.New(h.ServeWs))
}
