package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/anjiri1684/drive_tutor/services"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	reminderLead   = 60 * time.Minute
	reminderWindow = 5 * time.Minute
)

// LessonReminders emails both parties of confirmed lessons that start within
// the next reminder window. Lesson dates and times are wall-clock values in
// loc.
type LessonReminders struct {
	store  services.Store
	mailer services.Mailer
	loc    *time.Location
	log    *zap.Logger
	now    func() time.Time
}

func NewLessonReminders(store services.Store, mailer services.Mailer, loc *time.Location, log *zap.Logger) *LessonReminders {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &LessonReminders{store: store, mailer: mailer, loc: loc, log: log, now: time.Now}
}

// WithClock allows tests to override the clock used by the job.
func (r *LessonReminders) WithClock(fn func() time.Time) {
	r.now = fn
}

// Run sends the reminders due now and returns how many lessons were covered.
func (r *LessonReminders) Run(ctx context.Context) (int, error) {
	lower := r.now().In(r.loc).Add(reminderLead)
	upper := lower.Add(reminderWindow)

	sent := 0
	for _, day := range calendarDays(lower, upper) {
		lessons, err := r.store.FindLessons(ctx, services.LessonFilter{
			Date:     &day,
			Statuses: []models.LessonStatus{models.LessonConfirmed},
		})
		if err != nil {
			return sent, fmt.Errorf("find lessons for %s: %w", day.Format(time.DateOnly), err)
		}
		for i := range lessons {
			start, err := r.startOf(&lessons[i])
			if err != nil {
				r.log.Warn("lesson with unreadable start time", zap.String("lesson_id", lessons[i].ID.String()), zap.Error(err))
				continue
			}
			if start.Before(lower) || !start.Before(upper) {
				continue
			}
			if err := r.remind(ctx, &lessons[i], start); err != nil {
				r.log.Error("lesson reminder failed", zap.String("lesson_id", lessons[i].ID.String()), zap.Error(err))
				continue
			}
			sent++
		}
	}
	if sent > 0 {
		r.log.Info("lesson reminders sent", zap.Int("count", sent))
	}
	return sent, nil
}

func (r *LessonReminders) startOf(l *models.Lesson) (time.Time, error) {
	minutes, err := services.ParseClock(l.StartTime)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := l.Day().Date()
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, r.loc), nil
}

func (r *LessonReminders) remind(ctx context.Context, l *models.Lesson, start time.Time) error {
	if r.mailer == nil {
		return nil
	}
	pkg, err := r.store.GetPackage(ctx, l.PackageID)
	if err != nil {
		return err
	}
	for _, id := range []uuid.UUID{pkg.StudentID, pkg.InstructorID} {
		user, err := r.store.GetUser(ctx, id)
		if err != nil {
			return err
		}
		body := fmt.Sprintf(
			"<h1>Lesson Reminder</h1><p>Hi %s,</p><p>Your %gh driving lesson starts at %s on %s.</p>",
			user.FullName, l.DurationHours, start.Format("15:04"), start.Format("02/01/2006"),
		)
		if err := r.mailer.Send(ctx, user.FullName, user.Email, "Reminder: Your lesson starts in 1 hour!", body); err != nil {
			return err
		}
	}
	return nil
}

// calendarDays lists the distinct dates touched by [from, to], as stored in
// the lesson date column.
func calendarDays(from, to time.Time) []time.Time {
	day := func(t time.Time) time.Time {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	first, last := day(from), day(to)
	if first.Equal(last) {
		return []time.Time{first}
	}
	return []time.Time{first, last}
}
