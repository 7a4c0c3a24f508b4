package database

import (
	"context"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/anjiri1684/drive_tutor/services"
)

func (s *Store) DashboardStats(ctx context.Context) (*services.DashboardStats, error) {
	db := s.conn(ctx)
	stats := &services.DashboardStats{PackagesByStatus: map[models.PackageStatus]int64{}}

	if err := db.Model(&models.User{}).Count(&stats.Users).Error; err != nil {
		return nil, translate(err)
	}
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleInstructor).Count(&stats.Instructors).Error; err != nil {
		return nil, translate(err)
	}
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleStudent).Count(&stats.Students).Error; err != nil {
		return nil, translate(err)
	}

	var byStatus []struct {
		Status models.PackageStatus
		Count  int64
	}
	if err := db.Model(&models.LessonPackage{}).Select("status, COUNT(*) AS count").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, translate(err)
	}
	for _, row := range byStatus {
		stats.PackagesByStatus[row.Status] = row.Count
	}

	var revenue struct {
		Total    float64
		Platform float64
	}
	err := db.Model(&models.LessonPackage{}).
		Select("COALESCE(SUM(total_price), 0) AS total, COALESCE(SUM(platform_amount), 0) AS platform").
		Where("status = ?", models.PackageCompleted).
		Scan(&revenue).Error
	if err != nil {
		return nil, translate(err)
	}
	stats.CompletedRevenue = revenue.Total
	stats.PlatformRevenue = revenue.Platform

	if err := db.Model(&models.Instructor{}).
		Select("COALESCE(AVG(avg_rating), 0)").
		Where("review_count > 0").
		Scan(&stats.AverageRating).Error; err != nil {
		return nil, translate(err)
	}
	if err := db.Model(&models.Instructor{}).
		Where("subscription_active = ?", true).
		Count(&stats.ActiveSubscribers).Error; err != nil {
		return nil, translate(err)
	}
	return stats, nil
}
