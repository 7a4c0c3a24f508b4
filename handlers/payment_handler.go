package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type StartCheckoutRequest struct {
	Provider string `json:"provider" validate:"required"`
}

// providerNotification covers the order id field both webhook styles send.
type providerNotification struct {
	OrderID string `json:"order_id"`
}

func (h *Handlers) ListProviders(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"providers": h.Checkout.Providers()})
}

func (h *Handlers) StartCheckout(c *fiber.Ctx) error {
	id, err := paramID(c, "packageId")
	if err != nil {
		return err
	}
	var req StartCheckoutRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.Checkout.Start(c.UserContext(), actor(c), id, req.Provider)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// CapturePaymentReturn handles the payer returning from the provider; PayPal
// passes the order id as ?token=.
func (h *Handlers) CapturePaymentReturn(c *fiber.Ctx) error {
	orderID := c.Query("token", c.Query("order_id"))
	if orderID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Missing order id")
	}
	payment, err := h.Checkout.Capture(c.UserContext(), c.Params("provider"), orderID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(payment)
}

// PaymentNotification is the provider webhook. The body is only used to find
// the order; its outcome is always re-read from the provider.
func (h *Handlers) PaymentNotification(c *fiber.Ctx) error {
	var note providerNotification
	if err := c.BodyParser(&note); err != nil || note.OrderID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Missing order id")
	}
	if _, err := h.Checkout.Capture(c.UserContext(), c.Params("provider"), note.OrderID); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (h *Handlers) CancelPayment(c *fiber.Ctx) error {
	id, err := paramID(c, "paymentId")
	if err != nil {
		return err
	}
	payment, err := h.Checkout.Cancel(c.UserContext(), actor(c), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(payment)
}
