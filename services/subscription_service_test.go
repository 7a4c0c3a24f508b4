package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/anjiri1684/drive_tutor/services"
)

func TestSubscriptionLifecycle(t *testing.T) {
	f := newFixture(t)
	subs := services.NewSubscriptionService(f.store, 10, nil)
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	subs.WithClock(func() time.Time { return now })

	plan, rate, err := subs.Current(f.ctx, f.instructor)
	if err != nil || plan != nil || rate != 10 {
		t.Fatalf("Current without plan = %v %v %v", plan, rate, err)
	}

	instructor, err := subs.Subscribe(f.ctx, f.instructor, models.PlanProfessional)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if want := now.AddDate(0, 1, 0); !instructor.SubscriptionExpiresAt.Equal(want) {
		t.Fatalf("expires = %v, want %v", instructor.SubscriptionExpiresAt, want)
	}
	plan, rate, err = subs.Current(f.ctx, f.instructor)
	if err != nil || plan == nil || plan.ID != models.PlanProfessional || rate != 10 {
		t.Fatalf("Current = %v %v %v", plan, rate, err)
	}

	if _, err := subs.Subscribe(f.ctx, f.instructor, "gold"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("unknown plan: got %v", err)
	}
	if _, err := subs.Subscribe(f.ctx, f.student, models.PlanBasic); !errors.Is(err, services.ErrUnauthorizedActor) {
		t.Fatalf("student subscribe: got %v", err)
	}

	if n, err := subs.ExpireDue(f.ctx); err != nil || n != 0 {
		t.Fatalf("ExpireDue before expiry = %d, %v", n, err)
	}
	now = now.AddDate(0, 1, 1)
	if n, err := subs.ExpireDue(f.ctx); err != nil || n != 1 {
		t.Fatalf("ExpireDue after expiry = %d, %v", n, err)
	}
	if plan, _, _ := subs.Current(f.ctx, f.instructor); plan != nil {
		t.Fatalf("plan after expiry = %v", plan)
	}
}

func TestSubscriptionCancel(t *testing.T) {
	f := newFixture(t)
	subs := services.NewSubscriptionService(f.store, 10, nil)

	if _, err := subs.Subscribe(f.ctx, f.instructor, models.PlanBasic); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	_, rate, _ := subs.Current(f.ctx, f.instructor)
	if rate != 15 {
		t.Fatalf("basic fee = %v, want 15", rate)
	}
	instructor, err := subs.Cancel(f.ctx, f.instructor)
	if err != nil || instructor.SubscriptionActive {
		t.Fatalf("Cancel = %v, %v", instructor, err)
	}
	if len(subs.Plans()) != 3 {
		t.Fatalf("plans = %d", len(subs.Plans()))
	}
}

func TestAdminService(t *testing.T) {
	f := newFixture(t)
	admin := services.Admin(f.addUser(t, "Admin", models.RoleAdmin))
	svc := services.NewAdminService(f.store, nil)

	pkg := completedPackage(t, f)
	stats, err := svc.Dashboard(f.ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if stats.Users != 3 || stats.PackagesByStatus[models.PackageCompleted] != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.CompletedRevenue != pkg.TotalPrice || stats.PlatformRevenue != pkg.PlatformAmount {
		t.Fatalf("revenue = %v / %v", stats.CompletedRevenue, stats.PlatformRevenue)
	}

	students, err := svc.Users(f.ctx, models.RoleStudent)
	if err != nil || len(students) != 1 {
		t.Fatalf("Users(student) = %d, %v", len(students), err)
	}

	user, err := svc.ToggleUserActive(f.ctx, admin, f.student.ID)
	if err != nil || user.IsActive {
		t.Fatalf("ToggleUserActive = %v, %v", user, err)
	}
	if _, err := svc.ToggleUserActive(f.ctx, admin, admin.ID); !errors.Is(err, services.ErrUnauthorizedActor) {
		t.Fatalf("self toggle: got %v", err)
	}
}
