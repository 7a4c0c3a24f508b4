package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minutesPerDay = 24 * 60

// Only confirmed and done lessons occupy the instructor's agenda.
var blockingLessonStatuses = []models.LessonStatus{models.LessonConfirmed, models.LessonDone}

// LessonLookup is the read side the conflict checker needs.
type LessonLookup interface {
	FindLessons(ctx context.Context, filter LessonFilter) ([]models.Lesson, error)
}

// Slot is a lesson time range on a calendar date.
type Slot struct {
	Date          time.Time
	StartTime     string
	DurationHours float64
}

// interval returns the half-open [start, end) range in minutes since midnight.
func (s Slot) interval() (int, int, error) {
	start, err := ParseClock(s.StartTime)
	if err != nil {
		return 0, 0, err
	}
	return start, start + int(math.Round(s.DurationHours*60)), nil
}

// ParseClock converts "HH:MM" to minutes since midnight.
func ParseClock(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, invalid("start time %q must use HH:MM", value)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

type ConflictChecker struct {
	lessons LessonLookup
	log     *zap.Logger
}

func NewConflictChecker(lessons LessonLookup, log *zap.Logger) *ConflictChecker {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConflictChecker{lessons: lessons, log: log}
}

// HasConflict reports whether slot overlaps a confirmed or done lesson of the
// instructor, ignoring exclude. The check is best-effort: when the lookup
// fails it reports no conflict and verified=false.
func (c *ConflictChecker) HasConflict(ctx context.Context, instructorID uuid.UUID, slot Slot, exclude *uuid.UUID) (conflict bool, verified bool) {
	newStart, newEnd, err := slot.interval()
	if err != nil {
		return false, false
	}

	day := dateOnly(slot.Date)
	existing, err := c.lessons.FindLessons(ctx, LessonFilter{
		InstructorID: &instructorID,
		Date:         &day,
		Statuses:     blockingLessonStatuses,
	})
	if err != nil {
		c.log.Warn("conflict lookup failed, allowing slot",
			zap.String("instructor_id", instructorID.String()),
			zap.Time("date", day),
			zap.Error(err),
		)
		return false, false
	}

	for _, l := range existing {
		if exclude != nil && l.ID == *exclude {
			continue
		}
		start, end, err := Slot{StartTime: l.StartTime, DurationHours: l.DurationHours}.interval()
		if err != nil {
			c.log.Warn("skipping lesson with malformed start time",
				zap.String("lesson_id", l.ID.String()), zap.String("start_time", l.StartTime))
			continue
		}
		if overlaps(newStart, newEnd, start, end) {
			return true, true
		}
	}
	return false, true
}

func validateSlot(slot Slot) error {
	if slot.Date.IsZero() {
		return invalid("date is required")
	}
	if slot.DurationHours <= 0 {
		return invalid("duration must be positive")
	}
	start, end, err := slot.interval()
	if err != nil {
		return err
	}
	if end > minutesPerDay || end <= start {
		return invalid("lesson must end on the same day")
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func formatSlot(s Slot) string {
	return fmt.Sprintf("%s %s (%gh)", s.Date.Format(time.DateOnly), s.StartTime, s.DurationHours)
}
