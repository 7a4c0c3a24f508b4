package services

import (
	"context"
	"fmt"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AdminService struct {
	store Store
	log   *zap.Logger
}

func NewAdminService(store Store, log *zap.Logger) *AdminService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminService{store: store, log: log}
}

func (s *AdminService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats, err := s.store.DashboardStats(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	stats.CompletedRevenue = round2(stats.CompletedRevenue)
	stats.PlatformRevenue = round2(stats.PlatformRevenue)
	stats.AverageRating = round1(stats.AverageRating)
	return stats, nil
}

// Users lists accounts; an empty role lists everyone.
func (s *AdminService) Users(ctx context.Context, role models.Role) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx, role)
	return users, storeErr(err)
}

// ToggleUserActive flips the active flag. Admins cannot disable themselves.
func (s *AdminService) ToggleUserActive(ctx context.Context, actor Actor, userID uuid.UUID) (*models.User, error) {
	if actor.ID == userID {
		return nil, fmt.Errorf("%w: admins cannot disable their own account", ErrUnauthorizedActor)
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	user.IsActive = !user.IsActive
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, storeErr(err)
	}
	s.log.Info("user active flag changed",
		zap.String("user_id", user.ID.String()),
		zap.Bool("active", user.IsActive),
		zap.String("admin_id", actor.ID.String()),
	)
	return user, nil
}
