package routes

import (
	"github.com/anjiri1684/drive_tutor/handlers"
	"github.com/anjiri1684/drive_tutor/middleware"
	"github.com/gofiber/fiber/v2"
)

func StudentRoutes(api fiber.Router, h *handlers.Handlers) {
	student := api.Group("/student", middleware.Protected(h.JWTSecret), middleware.StudentRequired())

	student.Get("/favorites", h.ListFavorites)
	student.Post("/favorites/:instructorId", h.AddFavorite)
	student.Delete("/favorites/:instructorId", h.RemoveFavorite)
	student.Get("/certificates", h.ListMyCertificates)
}
