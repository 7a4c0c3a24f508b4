package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hour registrations retry this many times when a concurrent write moved
// used_hours between read and conditional update.
const hourWriteAttempts = 3

type PackageService struct {
	store   Store
	pricing Pricing
	events  Publisher
	log     *zap.Logger
	now     func() time.Time
}

func NewPackageService(store Store, pricing Pricing, events Publisher, log *zap.Logger) *PackageService {
	if events == nil {
		events = nopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PackageService{store: store, pricing: pricing, events: events, log: log, now: time.Now}
}

// WithClock allows tests to override the clock used by the service.
func (s *PackageService) WithClock(fn func() time.Time) {
	s.now = fn
}

func (s *PackageService) Tiers() []Tier {
	return s.pricing.Tiers
}

// Quote prices hours with the instructor at the fee rate that would be
// captured right now.
func (s *PackageService) Quote(ctx context.Context, instructorID uuid.UUID, hours int) (Quote, error) {
	instructor, err := s.instructor(ctx, instructorID)
	if err != nil {
		return Quote{}, err
	}
	return s.pricing.ComputeWithRate(instructor.HourlyRate, hours, feeRateFor(instructor, s.now(), s.pricing.DefaultFeeRate))
}

// Create opens a pending package for the student actor.
func (s *PackageService) Create(ctx context.Context, actor Actor, instructorID uuid.UUID, hours int) (*models.LessonPackage, error) {
	if actor.Role != models.RoleStudent {
		return nil, fmt.Errorf("%w: only students can request packages", ErrUnauthorizedActor)
	}
	if _, err := s.store.GetStudent(ctx, actor.ID); err != nil {
		return nil, storeErr(err)
	}

	quote, err := s.Quote(ctx, instructorID, hours)
	if err != nil {
		return nil, err
	}

	pkg := &models.LessonPackage{
		ID:              uuid.New(),
		StudentID:       actor.ID,
		InstructorID:    instructorID,
		TotalHours:      quote.Hours,
		UsedHours:       0,
		TotalPrice:      quote.TotalPrice,
		PlatformFeeRate: quote.PlatformFeeRate,
		PlatformAmount:  quote.PlatformAmount,
		Status:          models.PackagePending,
		CreatedAt:       s.now(),
	}
	if err := s.store.CreatePackage(ctx, pkg); err != nil {
		return nil, storeErr(err)
	}

	s.log.Info("package requested",
		zap.String("package_id", pkg.ID.String()),
		zap.String("student_id", pkg.StudentID.String()),
		zap.String("instructor_id", pkg.InstructorID.String()),
		zap.Int("hours", pkg.TotalHours),
		zap.Float64("total_price", pkg.TotalPrice),
	)
	s.publish(ctx, EventPackageRequested, pkg, actor.ID, nil)
	return pkg, nil
}

// Confirm accepts a pending package. Only its instructor may confirm.
func (s *PackageService) Confirm(ctx context.Context, actor Actor, id uuid.UUID) (*models.LessonPackage, error) {
	pkg, err := s.load(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if party, err := actor.partyOf(pkg); err != nil {
		return nil, err
	} else if party != models.RoleInstructor {
		return nil, fmt.Errorf("%w: only the instructor can confirm", ErrUnauthorizedActor)
	}
	if err := transition(PackageTransitions, pkg.Status, models.PackageConfirmed); err != nil {
		return nil, err
	}

	now := s.now()
	status := models.PackageConfirmed
	pkg, err = s.apply(ctx, s.store, id, PackageGuard{Statuses: PackageTransitions.Sources(status)},
		PackageChanges{Status: &status, ConfirmedAt: &now})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, EventPackageConfirmed, pkg, actor.ID, nil)
	return pkg, nil
}

// Cancel ends a pending or confirmed package. Either party may cancel.
func (s *PackageService) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*models.LessonPackage, error) {
	pkg, err := s.load(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if _, err := actor.partyOf(pkg); err != nil {
		return nil, err
	}
	if err := transition(PackageTransitions, pkg.Status, models.PackageCancelled); err != nil {
		return nil, err
	}

	status := models.PackageCancelled
	pkg, err = s.apply(ctx, s.store, id, PackageGuard{Statuses: PackageTransitions.Sources(status)},
		PackageChanges{Status: &status})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, EventPackageCancelled, pkg, actor.ID, nil)
	return pkg, nil
}

// RegisterCompletedHours is the instructor's direct hour registration, used
// when lessons are not tracked one by one. It is not idempotent.
func (s *PackageService) RegisterCompletedHours(ctx context.Context, actor Actor, id uuid.UUID, hours float64) (*models.LessonPackage, error) {
	pkg, err := s.load(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if party, err := actor.partyOf(pkg); err != nil {
		return nil, err
	} else if party != models.RoleInstructor {
		return nil, fmt.Errorf("%w: only the instructor can register hours", ErrUnauthorizedActor)
	}

	before := pkg.Status
	pkg, err = s.registerHours(ctx, s.store, pkg, hours)
	if err != nil {
		return nil, err
	}
	s.publishProgress(ctx, before, pkg, actor.ID)
	return pkg, nil
}

// Get returns a package with its lessons.
func (s *PackageService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.LessonPackage, error) {
	pkg, err := s.load(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := actor.canView(pkg); err != nil {
		return nil, err
	}
	lessons, err := s.store.FindLessons(ctx, LessonFilter{PackageID: &pkg.ID})
	if err != nil {
		return nil, storeErr(err)
	}
	pkg.Lessons = lessons
	return pkg, nil
}

// List returns the actor's packages; admins see every package.
func (s *PackageService) List(ctx context.Context, actor Actor, statuses []models.PackageStatus) ([]models.LessonPackage, error) {
	filter := PackageFilter{Statuses: statuses}
	switch actor.Role {
	case models.RoleStudent:
		filter.StudentID = &actor.ID
	case models.RoleInstructor:
		filter.InstructorID = &actor.ID
	case models.RoleAdmin:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrUnauthorizedActor, actor.Role)
	}
	pkgs, err := s.store.ListPackages(ctx, filter)
	return pkgs, storeErr(err)
}

// registerHours adds hours to pkg with a write guarded on the observed status
// and used hours. Excess over the package total is dropped.
func (s *PackageService) registerHours(ctx context.Context, st Store, pkg *models.LessonPackage, hours float64) (*models.LessonPackage, error) {
	if hours <= 0 {
		return nil, invalid("hours must be positive")
	}
	hours = round2(hours)

	for attempt := 1; ; attempt++ {
		total := float64(pkg.TotalHours)
		used := round2(min(pkg.UsedHours+hours, total))
		if dropped := pkg.UsedHours + hours - total; dropped > 0 {
			s.log.Warn("hours above package total dropped",
				zap.String("package_id", pkg.ID.String()), zap.Float64("dropped", dropped))
		}

		next, err := nextHourStatus(pkg.Status, used >= total)
		if err != nil {
			return nil, err
		}

		observed := pkg.UsedHours
		changes := PackageChanges{Status: &next, UsedHours: &used}
		if next == models.PackageCompleted {
			now := s.now()
			enabled := true
			changes.CompletedAt = &now
			changes.ReviewEnabled = &enabled
		}

		ok, err := st.UpdatePackageIf(ctx, pkg.ID,
			PackageGuard{Statuses: []models.PackageStatus{pkg.Status}, UsedHours: &observed}, changes)
		if err != nil {
			return nil, storeErr(err)
		}
		if ok {
			return s.load(ctx, st, pkg.ID)
		}
		if attempt == hourWriteAttempts {
			return nil, fmt.Errorf("%w: package changed concurrently", ErrInvalidTransition)
		}
		if pkg, err = s.load(ctx, st, pkg.ID); err != nil {
			return nil, err
		}
	}
}

// nextHourStatus walks confirmed -> in_progress -> completed as far as the
// registration requires, validating each step against the table.
func nextHourStatus(current models.PackageStatus, filled bool) (models.PackageStatus, error) {
	status := current
	if status == models.PackageConfirmed {
		if err := transition(PackageTransitions, status, models.PackageInProgress); err != nil {
			return "", err
		}
		status = models.PackageInProgress
	}
	if status != models.PackageInProgress {
		return "", fmt.Errorf("%w: cannot register hours on a %s package", ErrInvalidTransition, current)
	}
	if filled {
		if err := transition(PackageTransitions, status, models.PackageCompleted); err != nil {
			return "", err
		}
		status = models.PackageCompleted
	}
	return status, nil
}

// apply performs a guarded write and returns the fresh row. A miss is
// reported as NotFound or InvalidTransition depending on the reloaded row.
func (s *PackageService) apply(ctx context.Context, st Store, id uuid.UUID, guard PackageGuard, changes PackageChanges) (*models.LessonPackage, error) {
	ok, err := st.UpdatePackageIf(ctx, id, guard, changes)
	if err != nil {
		return nil, storeErr(err)
	}
	current, err := s.load(ctx, st, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: package is %s", ErrInvalidTransition, current.Status)
	}
	return current, nil
}

func (s *PackageService) load(ctx context.Context, st Store, id uuid.UUID) (*models.LessonPackage, error) {
	pkg, err := st.GetPackage(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return pkg, nil
}

func (s *PackageService) instructor(ctx context.Context, id uuid.UUID) (*models.Instructor, error) {
	instructor, err := s.store.GetInstructor(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUnknownInstructor
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return instructor, nil
}

func (s *PackageService) publishProgress(ctx context.Context, before models.PackageStatus, pkg *models.LessonPackage, actorID uuid.UUID) {
	s.publish(ctx, EventPackageProgress, pkg, actorID, nil)
	if before != models.PackageCompleted && pkg.Status == models.PackageCompleted {
		s.log.Info("package completed", zap.String("package_id", pkg.ID.String()))
		s.publish(ctx, EventPackageCompleted, pkg, actorID, nil)
	}
}

func (s *PackageService) publish(ctx context.Context, kind EventKind, pkg *models.LessonPackage, actorID uuid.UUID, lessonID *uuid.UUID) {
	s.events.Publish(ctx, Event{
		Kind:         kind,
		PackageID:    pkg.ID,
		StudentID:    pkg.StudentID,
		InstructorID: pkg.InstructorID,
		LessonID:     lessonID,
		ActorID:      actorID,
		Data:         pkg,
	})
}
