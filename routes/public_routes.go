package routes

import (
	"github.com/anjiri1684/drive_tutor/handlers"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(api fiber.Router, h *handlers.Handlers) {
	api.Get("/tiers", h.ListTiers)
	api.Get("/quote", h.QuotePackage)
	api.Get("/plans", h.ListPlans)

	instructors := api.Group("/instructors")
	instructors.Get("", h.SearchInstructors)
	instructors.Get("/:instructorId", h.GetInstructorProfile)
	instructors.Get("/:instructorId/reviews", h.GetInstructorReviews)
}
