package handlers

import (
	"strconv"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/anjiri1684/drive_tutor/services"
	"github.com/gofiber/fiber/v2"
)

type UpdateProfileRequest struct {
	PhotoURL        *string  `json:"photo_url" validate:"omitempty,url"`
	DetranLicense   *string  `json:"detran_license" validate:"omitempty,max=50"`
	Category        *string  `json:"category" validate:"omitempty,max=5"`
	YearsExperience *int     `json:"years_experience" validate:"omitempty,gte=0"`
	HourlyRate      *float64 `json:"hourly_rate" validate:"omitempty,gt=0"`
	City            *string  `json:"city" validate:"omitempty,max=120"`
	Neighborhoods   []string `json:"neighborhoods" validate:"omitempty,dive,max=120"`
	HasVehicle      *bool    `json:"has_vehicle"`
	Bio             *string  `json:"bio" validate:"omitempty,max=2000"`
}

type SubscribeRequest struct {
	Plan string `json:"plan" validate:"required,oneof=basic professional premium"`
}

func (h *Handlers) SearchInstructors(c *fiber.Ctx) error {
	maxRate, _ := strconv.ParseFloat(c.Query("max_rate"), 64)
	instructors, err := h.Directory.Search(c.UserContext(), services.InstructorFilter{
		Query:      c.Query("q"),
		City:       c.Query("city"),
		Category:   c.Query("category"),
		MaxRate:    maxRate,
		OnlyActive: true,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(instructors)
}

func (h *Handlers) GetInstructorProfile(c *fiber.Ctx) error {
	id, err := paramID(c, "instructorId")
	if err != nil {
		return err
	}
	profile, err := h.Directory.Profile(c.UserContext(), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(profile)
}

func (h *Handlers) GetInstructorReviews(c *fiber.Ctx) error {
	id, err := paramID(c, "instructorId")
	if err != nil {
		return err
	}
	reviews, err := h.Reviews.ListForInstructor(c.UserContext(), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(reviews)
}

func (h *Handlers) UpdateInstructorProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	instructor, err := h.Directory.UpdateProfile(c.UserContext(), actor(c), services.UpdateInstructorProfile{
		PhotoURL:        req.PhotoURL,
		DetranLicense:   req.DetranLicense,
		Category:        req.Category,
		YearsExperience: req.YearsExperience,
		HourlyRate:      req.HourlyRate,
		City:            req.City,
		Neighborhoods:   req.Neighborhoods,
		HasVehicle:      req.HasVehicle,
		Bio:             req.Bio,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(instructor)
}

func (h *Handlers) ListPlans(c *fiber.Ctx) error {
	return c.JSON(h.Subscriptions.Plans())
}

func (h *Handlers) GetSubscription(c *fiber.Ctx) error {
	plan, feeRate, err := h.Subscriptions.Current(c.UserContext(), actor(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"plan": plan, "fee_rate": feeRate})
}

func (h *Handlers) Subscribe(c *fiber.Ctx) error {
	var req SubscribeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	instructor, err := h.Subscriptions.Subscribe(c.UserContext(), actor(c), models.PlanID(req.Plan))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(instructor)
}

func (h *Handlers) CancelSubscription(c *fiber.Ctx) error {
	instructor, err := h.Subscriptions.Cancel(c.UserContext(), actor(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(instructor)
}
