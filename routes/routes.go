package routes

import (
	"github.com/anjiri1684/drive_tutor/handlers"
	"github.com/gofiber/fiber/v2"
)

// Setup mounts every API area under /api/v1.
func Setup(app *fiber.App, h *handlers.Handlers) {
	api := app.Group("/api/v1")

	AuthRoutes(api, h)
	PublicRoutes(api, h)
	StudentRoutes(api, h)
	InstructorRoutes(api, h)
	PackageRoutes(api, h)
	MessagingRoutes(api, h)
	PaymentRoutes(api, h)
	AdminRoutes(api, h)
}
