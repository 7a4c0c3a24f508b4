package handlers

import (
	"github.com/anjiri1684/drive_tutor/models"
	"github.com/gofiber/fiber/v2"
)

func (h *Handlers) GetDashboardAnalytics(c *fiber.Ctx) error {
	stats, err := h.Admin.Dashboard(c.UserContext())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(stats)
}

func (h *Handlers) GetAllUsers(c *fiber.Ctx) error {
	users, err := h.Admin.Users(c.UserContext(), models.Role(c.Query("role")))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(users)
}

func (h *Handlers) ToggleUserStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	user, err := h.Admin.ToggleUserActive(c.UserContext(), actor(c), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User status updated successfully", "is_active": user.IsActive})
}

func (h *Handlers) AdminGetPayments(c *fiber.Ctx) error {
	list, err := h.Checkout.List(c.UserContext())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(list)
}
