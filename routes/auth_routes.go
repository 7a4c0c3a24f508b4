package routes

import (
	"github.com/anjiri1684/drive_tutor/handlers"
	"github.com/anjiri1684/drive_tutor/middleware"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(api fiber.Router, h *handlers.Handlers) {
	auth := api.Group("/auth")
	auth.Post("/register", h.RegisterUser)
	auth.Post("/login", h.LoginUser)
	auth.Post("/forgot-password", h.ForgotPassword)
	auth.Post("/reset-password", h.ResetPassword)
	auth.Get("/me", middleware.Protected(h.JWTSecret), h.GetMe)
}
