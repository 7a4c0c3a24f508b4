package handlers

import (
	"time"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/anjiri1684/drive_tutor/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type lessonAction func(c *fiber.Ctx, id uuid.UUID) (*models.Lesson, error)

func (h *Handlers) lessonTransition(do lessonAction) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "lessonId")
		if err != nil {
			return err
		}
		lesson, err := do(c, id)
		if err != nil {
			return h.respondError(c, err)
		}
		return c.JSON(lesson)
	}
}

func (h *Handlers) ConfirmLesson(c *fiber.Ctx) error {
	return h.lessonTransition(func(c *fiber.Ctx, id uuid.UUID) (*models.Lesson, error) {
		return h.Lessons.Confirm(c.UserContext(), actor(c), id)
	})(c)
}

func (h *Handlers) RefuseLesson(c *fiber.Ctx) error {
	return h.lessonTransition(func(c *fiber.Ctx, id uuid.UUID) (*models.Lesson, error) {
		return h.Lessons.Refuse(c.UserContext(), actor(c), id)
	})(c)
}

func (h *Handlers) CancelLesson(c *fiber.Ctx) error {
	return h.lessonTransition(func(c *fiber.Ctx, id uuid.UUID) (*models.Lesson, error) {
		return h.Lessons.Cancel(c.UserContext(), actor(c), id)
	})(c)
}

// MarkLessonDone returns the lesson together with the updated package.
func (h *Handlers) MarkLessonDone(c *fiber.Ctx) error {
	id, err := paramID(c, "lessonId")
	if err != nil {
		return err
	}
	lesson, pkg, err := h.Lessons.MarkDone(c.UserContext(), actor(c), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"lesson": lesson, "package": pkg})
}

// CheckConflict lets a client test a slot before proposing it.
func (h *Handlers) CheckConflict(c *fiber.Ctx) error {
	instructorID, err := uuid.Parse(c.Query("instructor_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid instructor_id")
	}
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
	}
	conflict, err := h.Lessons.HasConflict(c.UserContext(), instructorID, services.Slot{
		Date:          date,
		StartTime:     c.Query("start_time"),
		DurationHours: c.QueryFloat("duration_hours"),
	}, nil)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"conflict": conflict})
}
