package routes

import (
	"github.com/anjiri1684/drive_tutor/handlers"
	"github.com/anjiri1684/drive_tutor/middleware"
	"github.com/gofiber/fiber/v2"
)

// PackageRoutes covers packages, their lessons and reviews. Party checks are
// made by the services, so only the token is required here.
func PackageRoutes(api fiber.Router, h *handlers.Handlers) {
	protected := middleware.Protected(h.JWTSecret)

	packages := api.Group("/packages", protected)
	packages.Get("", h.ListPackages)
	packages.Post("", middleware.StudentRequired(), h.CreatePackage)
	packages.Get("/:packageId", h.GetPackage)
	packages.Post("/:packageId/confirm", middleware.InstructorRequired(), h.ConfirmPackage)
	packages.Post("/:packageId/cancel", h.CancelPackage)
	packages.Post("/:packageId/hours", middleware.InstructorRequired(), h.RegisterHours)

	packages.Get("/:packageId/lessons", h.ListPackageLessons)
	packages.Post("/:packageId/lessons", h.ProposeLesson)

	packages.Get("/:packageId/review", h.CanReview)
	packages.Post("/:packageId/review", middleware.StudentRequired(), h.SubmitReview)

	lessons := api.Group("/lessons", protected)
	lessons.Get("/conflicts", h.CheckConflict)
	lessons.Post("/:lessonId/confirm", h.ConfirmLesson)
	lessons.Post("/:lessonId/refuse", h.RefuseLesson)
	lessons.Post("/:lessonId/cancel", h.CancelLesson)
	lessons.Post("/:lessonId/done", middleware.InstructorRequired(), h.MarkLessonDone)
}
