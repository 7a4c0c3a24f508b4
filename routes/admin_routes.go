package routes

import (
	"github.com/anjiri1684/drive_tutor/handlers"
	"github.com/anjiri1684/drive_tutor/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(api fiber.Router, h *handlers.Handlers) {
	admin := api.Group("/admin", middleware.Protected(h.JWTSecret), middleware.AdminRequired())

	admin.Get("/dashboard-analytics", h.GetDashboardAnalytics)
	admin.Get("/packages", h.ListPackages)
	admin.Get("/payments", h.AdminGetPayments)

	users := admin.Group("/users")
	users.Get("", h.GetAllUsers)
	users.Put("/:userId/status", h.ToggleUserStatus)
}
