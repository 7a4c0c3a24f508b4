package routes

import (
	"github.com/anjiri1684/drive_tutor/handlers"
	"github.com/anjiri1684/drive_tutor/middleware"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(api fiber.Router, h *handlers.Handlers) {
	payments := api.Group("/payments")

	// provider callbacks are unauthenticated; capture re-reads the outcome
	payments.Get("/:provider/return", h.CapturePaymentReturn)
	payments.Post("/:provider/notify", h.PaymentNotification)

	student := payments.Group("", middleware.Protected(h.JWTSecret), middleware.StudentRequired())
	student.Get("/providers", h.ListProviders)
	student.Post("/packages/:packageId/checkout", h.StartCheckout)
	student.Post("/:paymentId/cancel", h.CancelPayment)
}
