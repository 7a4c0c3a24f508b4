package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InstructorProfile is the public view of an instructor.
type InstructorProfile struct {
	Instructor *models.Instructor       `json:"instructor"`
	Reviews    []models.Review          `json:"reviews"`
	Plan       *models.SubscriptionPlan `json:"plan,omitempty"`
}

type UpdateInstructorProfile struct {
	PhotoURL        *string
	DetranLicense   *string
	Category        *string
	YearsExperience *int
	HourlyRate      *float64
	City            *string
	Neighborhoods   []string
	HasVehicle      *bool
	Bio             *string
}

type DirectoryService struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

func NewDirectoryService(store Store, log *zap.Logger) *DirectoryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DirectoryService{store: store, log: log, now: time.Now}
}

// WithClock allows tests to override the clock used by the service.
func (s *DirectoryService) WithClock(fn func() time.Time) {
	s.now = fn
}

// Search lists active instructors, paying plans first, then by rating.
func (s *DirectoryService) Search(ctx context.Context, filter InstructorFilter) ([]models.Instructor, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	filter.City = strings.TrimSpace(filter.City)
	filter.OnlyActive = true

	found, err := s.store.SearchInstructors(ctx, filter)
	if err != nil {
		return nil, storeErr(err)
	}

	now := s.now()
	slices.SortStableFunc(found, func(a, b models.Instructor) int {
		if c := cmp.Compare(planRank(&b, now), planRank(&a, now)); c != 0 {
			return c
		}
		if c := cmp.Compare(b.AvgRating, a.AvgRating); c != 0 {
			return c
		}
		return cmp.Compare(b.ReviewCount, a.ReviewCount)
	})
	return found, nil
}

func (s *DirectoryService) Profile(ctx context.Context, id uuid.UUID) (*InstructorProfile, error) {
	instructor, err := s.store.GetInstructor(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUnknownInstructor
	}
	if err != nil {
		return nil, storeErr(err)
	}
	reviews, err := s.store.ListReviewsByInstructor(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}

	profile := &InstructorProfile{Instructor: instructor, Reviews: reviews}
	if planID, ok := instructor.ActivePlan(s.now()); ok {
		if plan, ok := models.FindPlan(planID); ok {
			profile.Plan = &plan
		}
	}
	return profile, nil
}

func (s *DirectoryService) UpdateProfile(ctx context.Context, actor Actor, req UpdateInstructorProfile) (*models.Instructor, error) {
	if actor.Role != models.RoleInstructor {
		return nil, fmt.Errorf("%w: only instructors have a public profile", ErrUnauthorizedActor)
	}
	instructor, err := s.store.GetInstructor(ctx, actor.ID)
	if err != nil {
		return nil, storeErr(err)
	}

	if req.HourlyRate != nil {
		if *req.HourlyRate <= 0 {
			return nil, invalid("hourly rate must be positive")
		}
		instructor.HourlyRate = round2(*req.HourlyRate)
	}
	if req.YearsExperience != nil {
		if *req.YearsExperience < 0 {
			return nil, invalid("years of experience cannot be negative")
		}
		instructor.YearsExperience = *req.YearsExperience
	}
	if req.PhotoURL != nil {
		instructor.PhotoURL = req.PhotoURL
	}
	if req.DetranLicense != nil {
		instructor.DetranLicense = strings.TrimSpace(*req.DetranLicense)
	}
	if req.Category != nil {
		instructor.Category = strings.ToUpper(strings.TrimSpace(*req.Category))
	}
	if req.City != nil {
		instructor.City = strings.TrimSpace(*req.City)
	}
	if req.Neighborhoods != nil {
		instructor.Neighborhoods = req.Neighborhoods
	}
	if req.HasVehicle != nil {
		instructor.HasVehicle = *req.HasVehicle
	}
	if req.Bio != nil {
		instructor.Bio = req.Bio
	}

	if err := s.store.SaveInstructor(ctx, instructor); err != nil {
		return nil, storeErr(err)
	}
	return instructor, nil
}

// AddFavorite is idempotent.
func (s *DirectoryService) AddFavorite(ctx context.Context, actor Actor, instructorID uuid.UUID) error {
	if actor.Role != models.RoleStudent {
		return fmt.Errorf("%w: only students keep favorites", ErrUnauthorizedActor)
	}
	if _, err := s.store.GetInstructor(ctx, instructorID); errors.Is(err, ErrNotFound) {
		return ErrUnknownInstructor
	} else if err != nil {
		return storeErr(err)
	}
	return storeErr(s.store.AddFavorite(ctx, &models.Favorite{
		StudentID:    actor.ID,
		InstructorID: instructorID,
		CreatedAt:    s.now(),
	}))
}

func (s *DirectoryService) RemoveFavorite(ctx context.Context, actor Actor, instructorID uuid.UUID) error {
	if actor.Role != models.RoleStudent {
		return fmt.Errorf("%w: only students keep favorites", ErrUnauthorizedActor)
	}
	return storeErr(s.store.RemoveFavorite(ctx, actor.ID, instructorID))
}

func (s *DirectoryService) Favorites(ctx context.Context, actor Actor) ([]models.Instructor, error) {
	if actor.Role != models.RoleStudent {
		return nil, fmt.Errorf("%w: only students keep favorites", ErrUnauthorizedActor)
	}
	favs, err := s.store.ListFavorites(ctx, actor.ID)
	return favs, storeErr(err)
}
