package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minReviewCommentLength = 10

type SubmitReview struct {
	PackageID uuid.UUID
	Rating    int
	Comment   string
}

type ReviewService struct {
	store  Store
	events Publisher
	log    *zap.Logger
	now    func() time.Time
}

func NewReviewService(store Store, events Publisher, log *zap.Logger) *ReviewService {
	if events == nil {
		events = nopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReviewService{store: store, events: events, log: log, now: time.Now}
}

// WithClock allows tests to override the clock used by the service.
func (s *ReviewService) WithClock(fn func() time.Time) {
	s.now = fn
}

// CanReview reports whether the package is completed and not reviewed yet.
func (s *ReviewService) CanReview(ctx context.Context, actor Actor, packageID uuid.UUID) (bool, error) {
	pkg, err := s.store.GetPackage(ctx, packageID)
	if err != nil {
		return false, storeErr(err)
	}
	if err := actor.canView(pkg); err != nil {
		return false, err
	}
	return reviewOpen(pkg), nil
}

// Submit records the student's single review of a completed package and
// refreshes the instructor's average rating.
func (s *ReviewService) Submit(ctx context.Context, actor Actor, req SubmitReview) (*models.Review, error) {
	pkg, err := s.store.GetPackage(ctx, req.PackageID)
	if err != nil {
		return nil, storeErr(err)
	}
	if actor.Role != models.RoleStudent || pkg.StudentID != actor.ID || !reviewOpen(pkg) {
		return nil, ErrReviewNotAllowed
	}

	comment := strings.TrimSpace(req.Comment)
	if req.Rating < 1 || req.Rating > 5 {
		return nil, invalid("rating must be between 1 and 5")
	}
	if utf8.RuneCountInString(comment) < minReviewCommentLength {
		return nil, invalid("comment must have at least %d characters", minReviewCommentLength)
	}

	review := &models.Review{
		ID:           uuid.New(),
		PackageID:    pkg.ID,
		StudentID:    pkg.StudentID,
		InstructorID: pkg.InstructorID,
		Rating:       req.Rating,
		Comment:      comment,
		CreatedAt:    s.now(),
	}

	var average float64
	err = s.store.Transaction(ctx, func(tx Store) error {
		done := true
		ok, err := tx.UpdatePackageIf(ctx, pkg.ID,
			PackageGuard{Statuses: []models.PackageStatus{models.PackageCompleted}, ReviewOpen: true},
			PackageChanges{ReviewCompleted: &done})
		if err != nil {
			return storeErr(err)
		}
		if !ok {
			return ErrReviewNotAllowed
		}
		if err := tx.CreateReview(ctx, review); err != nil {
			return storeErr(err)
		}

		ratings, err := tx.InstructorRatings(ctx, pkg.InstructorID)
		if err != nil {
			return storeErr(err)
		}
		average = averageRating(ratings)
		return storeErr(tx.UpdateInstructorRating(ctx, pkg.InstructorID, average, len(ratings)))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("review submitted",
		zap.String("package_id", pkg.ID.String()),
		zap.String("instructor_id", pkg.InstructorID.String()),
		zap.Int("rating", review.Rating),
		zap.Float64("average", average),
	)
	s.events.Publish(ctx, Event{
		Kind:         EventReviewSubmitted,
		PackageID:    pkg.ID,
		StudentID:    pkg.StudentID,
		InstructorID: pkg.InstructorID,
		ActorID:      actor.ID,
		Data:         review,
	})
	return review, nil
}

func (s *ReviewService) ListForInstructor(ctx context.Context, instructorID uuid.UUID) ([]models.Review, error) {
	reviews, err := s.store.ListReviewsByInstructor(ctx, instructorID)
	if err != nil {
		return nil, storeErr(err)
	}
	return reviews, nil
}

func reviewOpen(pkg *models.LessonPackage) bool {
	return pkg.ReviewEnabled && !pkg.ReviewCompleted
}

// averageRating is the mean rounded to one decimal place.
func averageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return round1(float64(sum) / float64(len(ratings)))
}
