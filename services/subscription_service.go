package services

import (
	"context"
	"fmt"
	"time"

	"github.com/anjiri1684/drive_tutor/models"
	"go.uber.org/zap"
)

type SubscriptionService struct {
	store          Store
	defaultFeeRate float64
	log            *zap.Logger
	now            func() time.Time
}

func NewSubscriptionService(store Store, defaultFeeRate float64, log *zap.Logger) *SubscriptionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SubscriptionService{store: store, defaultFeeRate: defaultFeeRate, log: log, now: time.Now}
}

// WithClock allows tests to override the clock used by the service.
func (s *SubscriptionService) WithClock(fn func() time.Time) {
	s.now = fn
}

func (s *SubscriptionService) Plans() []models.SubscriptionPlan {
	return models.SubscriptionPlans
}

// Subscribe activates plan for the instructor actor for one month from now.
func (s *SubscriptionService) Subscribe(ctx context.Context, actor Actor, planID models.PlanID) (*models.Instructor, error) {
	if actor.Role != models.RoleInstructor {
		return nil, fmt.Errorf("%w: only instructors can subscribe", ErrUnauthorizedActor)
	}
	if _, ok := models.FindPlan(planID); !ok {
		return nil, invalid("unknown plan %q", planID)
	}

	expires := s.now().AddDate(0, 1, 0)
	if err := s.store.UpdateSubscription(ctx, actor.ID, true, &planID, &expires); err != nil {
		return nil, storeErr(err)
	}
	s.log.Info("subscription activated",
		zap.String("instructor_id", actor.ID.String()),
		zap.String("plan", string(planID)),
		zap.Time("expires_at", expires),
	)

	instructor, err := s.store.GetInstructor(ctx, actor.ID)
	return instructor, storeErr(err)
}

func (s *SubscriptionService) Cancel(ctx context.Context, actor Actor) (*models.Instructor, error) {
	if actor.Role != models.RoleInstructor {
		return nil, fmt.Errorf("%w: only instructors have subscriptions", ErrUnauthorizedActor)
	}
	if err := s.store.UpdateSubscription(ctx, actor.ID, false, nil, nil); err != nil {
		return nil, storeErr(err)
	}
	instructor, err := s.store.GetInstructor(ctx, actor.ID)
	return instructor, storeErr(err)
}

// Current returns the instructor's active plan and the fee rate new packages
// would capture.
func (s *SubscriptionService) Current(ctx context.Context, actor Actor) (*models.SubscriptionPlan, float64, error) {
	instructor, err := s.store.GetInstructor(ctx, actor.ID)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	rate := feeRateFor(instructor, s.now(), s.defaultFeeRate)
	if id, ok := instructor.ActivePlan(s.now()); ok {
		plan, _ := models.FindPlan(id)
		return &plan, rate, nil
	}
	return nil, rate, nil
}

// ExpireDue switches off every subscription whose period has ended.
func (s *SubscriptionService) ExpireDue(ctx context.Context) (int64, error) {
	n, err := s.store.ExpireSubscriptions(ctx, s.now())
	if err != nil {
		return 0, storeErr(err)
	}
	if n > 0 {
		s.log.Info("subscriptions expired", zap.Int64("count", n))
	}
	return n, nil
}

// feeRateFor is the commission captured on a new package: the active plan's
// rate, or the platform default without one.
func feeRateFor(instructor *models.Instructor, now time.Time, defaultRate float64) float64 {
	if id, ok := instructor.ActivePlan(now); ok {
		if plan, ok := models.FindPlan(id); ok {
			return plan.FeeRate
		}
	}
	return defaultRate
}

// planRank orders instructors in search results; zero means no active plan.
func planRank(instructor *models.Instructor, now time.Time) int {
	if id, ok := instructor.ActivePlan(now); ok {
		if plan, ok := models.FindPlan(id); ok {
			return plan.Rank
		}
	}
	return 0
}
