package handlers

import (
	"time"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/anjiri1684/drive_tutor/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreatePackageRequest struct {
	InstructorID string `json:"instructor_id" validate:"required,uuid"`
	Hours        int    `json:"hours"`
}

type RegisterHoursRequest struct {
	Hours float64 `json:"hours"`
}

type ProposeLessonRequest struct {
	Date          string  `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime     string  `json:"start_time" validate:"required,datetime=15:04"`
	DurationHours float64 `json:"duration_hours" validate:"required,gt=0"`
	Note          *string `json:"note" validate:"omitempty,max=500"`
}

type SubmitReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handlers) ListTiers(c *fiber.Ctx) error {
	return c.JSON(h.Packages.Tiers())
}

func (h *Handlers) QuotePackage(c *fiber.Ctx) error {
	instructorID, err := uuid.Parse(c.Query("instructor_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid instructor_id")
	}
	quote, err := h.Packages.Quote(c.UserContext(), instructorID, c.QueryInt("hours"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(quote)
}

func (h *Handlers) CreatePackage(c *fiber.Ctx) error {
	var req CreatePackageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	pkg, err := h.Packages.Create(c.UserContext(), actor(c), uuid.MustParse(req.InstructorID), req.Hours)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(pkg)
}

func (h *Handlers) ListPackages(c *fiber.Ctx) error {
	var statuses []models.PackageStatus
	for _, s := range splitQuery(c.Query("status")) {
		statuses = append(statuses, models.PackageStatus(s))
	}
	pkgs, err := h.Packages.List(c.UserContext(), actor(c), statuses)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(pkgs)
}

func (h *Handlers) GetPackage(c *fiber.Ctx) error {
	id, err := paramID(c, "packageId")
	if err != nil {
		return err
	}
	pkg, err := h.Packages.Get(c.UserContext(), actor(c), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(pkg)
}

func (h *Handlers) ConfirmPackage(c *fiber.Ctx) error {
	id, err := paramID(c, "packageId")
	if err != nil {
		return err
	}
	pkg, err := h.Packages.Confirm(c.UserContext(), actor(c), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(pkg)
}

func (h *Handlers) CancelPackage(c *fiber.Ctx) error {
	id, err := paramID(c, "packageId")
	if err != nil {
		return err
	}
	pkg, err := h.Packages.Cancel(c.UserContext(), actor(c), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(pkg)
}

func (h *Handlers) RegisterHours(c *fiber.Ctx) error {
	id, err := paramID(c, "packageId")
	if err != nil {
		return err
	}
	var req RegisterHoursRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	pkg, err := h.Packages.RegisterCompletedHours(c.UserContext(), actor(c), id, req.Hours)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(pkg)
}

func (h *Handlers) ListPackageLessons(c *fiber.Ctx) error {
	id, err := paramID(c, "packageId")
	if err != nil {
		return err
	}
	lessons, err := h.Lessons.ListForPackage(c.UserContext(), actor(c), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(lessons)
}

func (h *Handlers) ProposeLesson(c *fiber.Ctx) error {
	id, err := paramID(c, "packageId")
	if err != nil {
		return err
	}
	var req ProposeLessonRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	date, _ := time.Parse("2006-01-02", req.Date)
	lesson, err := h.Lessons.Propose(c.UserContext(), actor(c), services.ProposeLesson{
		PackageID:     id,
		Date:          date,
		StartTime:     req.StartTime,
		DurationHours: req.DurationHours,
		Note:          req.Note,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(lesson)
}

func (h *Handlers) CanReview(c *fiber.Ctx) error {
	id, err := paramID(c, "packageId")
	if err != nil {
		return err
	}
	ok, err := h.Reviews.CanReview(c.UserContext(), actor(c), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"can_review": ok})
}

func (h *Handlers) SubmitReview(c *fiber.Ctx) error {
	id, err := paramID(c, "packageId")
	if err != nil {
		return err
	}
	var req SubmitReviewRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	review, err := h.Reviews.Submit(c.UserContext(), actor(c), services.SubmitReview{
		PackageID: id,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}
