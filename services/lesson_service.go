package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var schedulablePackageStatuses = []models.PackageStatus{models.PackageConfirmed, models.PackageInProgress}

type ProposeLesson struct {
	PackageID     uuid.UUID
	Date          time.Time
	StartTime     string
	DurationHours float64
	Note          *string
}

type LessonService struct {
	store     Store
	conflicts *ConflictChecker
	packages  *PackageService
	events    Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewLessonService(store Store, packages *PackageService, events Publisher, log *zap.Logger) *LessonService {
	if events == nil {
		events = nopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LessonService{
		store:     store,
		conflicts: NewConflictChecker(store, log),
		packages:  packages,
		events:    events,
		log:       log,
		now:       time.Now,
	}
}

// WithClock allows tests to override the clock used by the service.
func (s *LessonService) WithClock(fn func() time.Time) {
	s.now = fn
}

// Propose creates a lesson in proposed status on behalf of either party.
func (s *LessonService) Propose(ctx context.Context, actor Actor, req ProposeLesson) (*models.Lesson, error) {
	pkg, err := s.packages.load(ctx, s.store, req.PackageID)
	if err != nil {
		return nil, err
	}
	party, err := actor.partyOf(pkg)
	if err != nil {
		return nil, err
	}
	if err := requireSchedulable(pkg); err != nil {
		return nil, err
	}

	slot := Slot{Date: dateOnly(req.Date), StartTime: req.StartTime, DurationHours: req.DurationHours}
	if err := validateSlot(slot); err != nil {
		return nil, err
	}
	if err := s.checkSlot(ctx, pkg.InstructorID, slot, nil); err != nil {
		return nil, err
	}

	var note *string
	if req.Note != nil {
		if trimmed := strings.TrimSpace(*req.Note); trimmed != "" {
			note = &trimmed
		}
	}

	now := s.now()
	lesson := &models.Lesson{
		ID:            uuid.New(),
		PackageID:     pkg.ID,
		InstructorID:  pkg.InstructorID,
		Date:          datatypes.Date(slot.Date),
		StartTime:     slot.StartTime,
		DurationHours: round2(slot.DurationHours),
		Status:        models.LessonProposed,
		ProposedBy:    party,
		Note:          note,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.CreateLesson(ctx, lesson); err != nil {
		return nil, storeErr(err)
	}

	s.log.Info("lesson proposed",
		zap.String("lesson_id", lesson.ID.String()),
		zap.String("package_id", pkg.ID.String()),
		zap.String("slot", formatSlot(slot)),
		zap.String("proposed_by", string(party)),
	)
	s.publish(ctx, EventLessonProposed, pkg, lesson, actor.ID)
	return lesson, nil
}

// Confirm accepts a proposal. Only the party who did not propose may confirm,
// and the slot is checked again since confirmation is the final arbitration
// between racing proposals.
func (s *LessonService) Confirm(ctx context.Context, actor Actor, lessonID uuid.UUID) (*models.Lesson, error) {
	lesson, pkg, party, err := s.loadForParty(ctx, actor, lessonID)
	if err != nil {
		return nil, err
	}
	if party == lesson.ProposedBy {
		return nil, fmt.Errorf("%w: the proposer cannot confirm their own lesson", ErrUnauthorizedActor)
	}
	if err := transition(LessonTransitions, lesson.Status, models.LessonConfirmed); err != nil {
		return nil, err
	}
	if err := requireSchedulable(pkg); err != nil {
		return nil, err
	}

	slot := Slot{Date: lesson.Day(), StartTime: lesson.StartTime, DurationHours: lesson.DurationHours}
	if err := s.checkSlot(ctx, pkg.InstructorID, slot, &lesson.ID); err != nil {
		return nil, err
	}

	lesson, err = s.move(ctx, s.store, lesson.ID, models.LessonConfirmed)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventLessonConfirmed, pkg, lesson, actor.ID)
	return lesson, nil
}

// Refuse turns down a proposal. It is a cancellation by another name.
func (s *LessonService) Refuse(ctx context.Context, actor Actor, lessonID uuid.UUID) (*models.Lesson, error) {
	return s.Cancel(ctx, actor, lessonID)
}

// Cancel drops a proposed or confirmed lesson. Hours are not touched.
func (s *LessonService) Cancel(ctx context.Context, actor Actor, lessonID uuid.UUID) (*models.Lesson, error) {
	lesson, pkg, _, err := s.loadForParty(ctx, actor, lessonID)
	if err != nil {
		return nil, err
	}
	if err := transition(LessonTransitions, lesson.Status, models.LessonCancelled); err != nil {
		return nil, err
	}

	lesson, err = s.move(ctx, s.store, lesson.ID, models.LessonCancelled)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventLessonCancelled, pkg, lesson, actor.ID)
	return lesson, nil
}

// MarkDone records a confirmed lesson as given and adds its duration to the
// package in the same transaction.
func (s *LessonService) MarkDone(ctx context.Context, actor Actor, lessonID uuid.UUID) (*models.Lesson, *models.LessonPackage, error) {
	lesson, pkg, party, err := s.loadForParty(ctx, actor, lessonID)
	if err != nil {
		return nil, nil, err
	}
	if party != models.RoleInstructor {
		return nil, nil, fmt.Errorf("%w: only the instructor can mark a lesson as done", ErrUnauthorizedActor)
	}
	if err := transition(LessonTransitions, lesson.Status, models.LessonDone); err != nil {
		return nil, nil, err
	}

	before := pkg.Status
	err = s.store.Transaction(ctx, func(tx Store) error {
		var err error
		if lesson, err = s.move(ctx, tx, lesson.ID, models.LessonDone); err != nil {
			return err
		}
		current, err := s.packages.load(ctx, tx, pkg.ID)
		if err != nil {
			return err
		}
		pkg, err = s.packages.registerHours(ctx, tx, current, lesson.DurationHours)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("lesson done",
		zap.String("lesson_id", lesson.ID.String()),
		zap.String("package_id", pkg.ID.String()),
		zap.Float64("used_hours", pkg.UsedHours),
		zap.String("package_status", string(pkg.Status)),
	)
	s.publish(ctx, EventLessonDone, pkg, lesson, actor.ID)
	s.packages.publishProgress(ctx, before, pkg, actor.ID)
	return lesson, pkg, nil
}

func (s *LessonService) ListForPackage(ctx context.Context, actor Actor, packageID uuid.UUID) ([]models.Lesson, error) {
	pkg, err := s.packages.load(ctx, s.store, packageID)
	if err != nil {
		return nil, err
	}
	if err := actor.canView(pkg); err != nil {
		return nil, err
	}
	lessons, err := s.store.FindLessons(ctx, LessonFilter{PackageID: &pkg.ID})
	return lessons, storeErr(err)
}

// HasConflict exposes the agenda check for clients that want to validate a
// slot before proposing it.
func (s *LessonService) HasConflict(ctx context.Context, instructorID uuid.UUID, slot Slot, exclude *uuid.UUID) (bool, error) {
	if err := validateSlot(slot); err != nil {
		return false, err
	}
	conflict, _ := s.conflicts.HasConflict(ctx, instructorID, slot, exclude)
	return conflict, nil
}

func (s *LessonService) checkSlot(ctx context.Context, instructorID uuid.UUID, slot Slot, exclude *uuid.UUID) error {
	conflict, verified := s.conflicts.HasConflict(ctx, instructorID, slot, exclude)
	if conflict {
		return fmt.Errorf("%w: %s", ErrScheduleConflict, formatSlot(slot))
	}
	if !verified {
		s.log.Warn("slot accepted without a verified conflict check",
			zap.String("instructor_id", instructorID.String()), zap.String("slot", formatSlot(slot)))
	}
	return nil
}

func (s *LessonService) loadForParty(ctx context.Context, actor Actor, lessonID uuid.UUID) (*models.Lesson, *models.LessonPackage, models.Role, error) {
	lesson, err := s.store.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, nil, "", storeErr(err)
	}
	pkg, err := s.packages.load(ctx, s.store, lesson.PackageID)
	if err != nil {
		return nil, nil, "", err
	}
	party, err := actor.partyOf(pkg)
	if err != nil {
		return nil, nil, "", err
	}
	return lesson, pkg, party, nil
}

// move performs the conditional status write for a lesson.
func (s *LessonService) move(ctx context.Context, st Store, id uuid.UUID, to models.LessonStatus) (*models.Lesson, error) {
	ok, err := st.UpdateLessonStatusIf(ctx, id, LessonTransitions.Sources(to), to)
	if err != nil {
		return nil, storeErr(err)
	}
	lesson, err := st.GetLesson(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: lesson is %s", ErrInvalidTransition, lesson.Status)
	}
	return lesson, nil
}

func requireSchedulable(pkg *models.LessonPackage) error {
	for _, s := range schedulablePackageStatuses {
		if pkg.Status == s {
			return nil
		}
	}
	return fmt.Errorf("%w: lessons cannot be scheduled on a %s package", ErrInvalidTransition, pkg.Status)
}

func (s *LessonService) publish(ctx context.Context, kind EventKind, pkg *models.LessonPackage, lesson *models.Lesson, actorID uuid.UUID) {
	s.events.Publish(ctx, Event{
		Kind:         kind,
		PackageID:    pkg.ID,
		StudentID:    pkg.StudentID,
		InstructorID: pkg.InstructorID,
		LessonID:     &lesson.ID,
		ActorID:      actorID,
		Data:         lesson,
	})
}
