package handlers

import (
	"time"

	"github.com/anjiri1684/drive_tutor/services"
	"github.com/gofiber/fiber/v2"
)

func (h *Handlers) ListFavorites(c *fiber.Ctx) error {
	instructors, err := h.Directory.Favorites(c.UserContext(), actor(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(instructors)
}

func (h *Handlers) AddFavorite(c *fiber.Ctx) error {
	id, err := paramID(c, "instructorId")
	if err != nil {
		return err
	}
	if err := h.Directory.AddFavorite(c.UserContext(), actor(c), id); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handlers) RemoveFavorite(c *fiber.Ctx) error {
	id, err := paramID(c, "instructorId")
	if err != nil {
		return err
	}
	if err := h.Directory.RemoveFavorite(c.UserContext(), actor(c), id); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handlers) ListMyCertificates(c *fiber.Ctx) error {
	certs, err := h.Certificates.ListForStudent(c.UserContext(), actor(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(certs)
}

// GetUploadSignature returns signed parameters for a direct profile photo upload.
func (h *Handlers) GetUploadSignature(c *fiber.Ctx) error {
	if h.Uploads == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Uploads are not configured"})
	}
	sig, err := h.Uploads.SignUpload(services.ProfileFolder, time.Now())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(sig)
}
