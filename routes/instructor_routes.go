package routes

import (
	"github.com/anjiri1684/drive_tutor/handlers"
	"github.com/anjiri1684/drive_tutor/middleware"
	"github.com/gofiber/fiber/v2"
)

func InstructorRoutes(api fiber.Router, h *handlers.Handlers) {
	// Guards sit on each route: a group middleware on "/instructor" would
	// also match the public "/instructors" paths.
	protected := middleware.Protected(h.JWTSecret)
	only := middleware.InstructorRequired()

	instructor := api.Group("/instructor")
	instructor.Put("/profile", protected, only, h.UpdateInstructorProfile)
	instructor.Get("/subscription", protected, only, h.GetSubscription)
	instructor.Post("/subscription", protected, only, h.Subscribe)
	instructor.Delete("/subscription", protected, only, h.CancelSubscription)

	api.Get("/uploads/signature", protected, h.GetUploadSignature)
}
