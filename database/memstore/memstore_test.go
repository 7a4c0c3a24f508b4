package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/anjiri1684/drive_tutor/services"
	"github.com/google/uuid"
)

func addUser(t *testing.T, s *Store, email string) *models.User {
	t.Helper()
	u := &models.User{FullName: "Test User", Email: email, Role: models.RoleStudent, IsActive: true}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestTransactionRollsBack(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx services.Store) error {
		if err := tx.CreateUser(ctx, &models.User{FullName: "Ghost", Email: "ghost@example.com", Role: models.RoleStudent}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transaction = %v", err)
	}
	if _, err := s.GetUserByEmail(ctx, "ghost@example.com"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("rolled back user still visible: %v", err)
	}
}

func TestTransactionCommits(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.Transaction(ctx, func(tx services.Store) error {
		return tx.CreateUser(ctx, &models.User{FullName: "Ana", Email: "ana@example.com", Role: models.RoleStudent})
	})
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}
	if _, err := s.GetUserByEmail(ctx, "ana@example.com"); err != nil {
		t.Fatalf("committed user missing: %v", err)
	}
}

func TestDuplicateEmail(t *testing.T) {
	s := New()
	addUser(t, s, "ana@example.com")
	err := s.CreateUser(context.Background(), &models.User{Email: "ANA@example.com"})
	if !errors.Is(err, services.ErrAlreadyExists) {
		t.Fatalf("duplicate email: got %v", err)
	}
}

func TestUpdatePackageIfGuards(t *testing.T) {
	s := New()
	ctx := context.Background()
	pkg := &models.LessonPackage{
		StudentID:    uuid.New(),
		InstructorID: uuid.New(),
		TotalHours:   5,
		Status:       models.PackageConfirmed,
	}
	if err := s.CreatePackage(ctx, pkg); err != nil {
		t.Fatalf("CreatePackage: %v", err)
	}

	used := 2.0
	stale := 1.0
	ok, err := s.UpdatePackageIf(ctx, pkg.ID, services.PackageGuard{UsedHours: &stale}, services.PackageChanges{UsedHours: &used})
	if err != nil || ok {
		t.Fatalf("stale guard applied: %v, %v", ok, err)
	}

	zero := 0.0
	ok, err = s.UpdatePackageIf(ctx, pkg.ID, services.PackageGuard{
		Statuses:  []models.PackageStatus{models.PackageConfirmed},
		UsedHours: &zero,
	}, services.PackageChanges{UsedHours: &used})
	if err != nil || !ok {
		t.Fatalf("matching guard rejected: %v, %v", ok, err)
	}
	got, _ := s.GetPackage(ctx, pkg.ID)
	if got.UsedHours != 2 {
		t.Fatalf("used hours = %v", got.UsedHours)
	}

	ok, _ = s.UpdatePackageIf(ctx, uuid.New(), services.PackageGuard{}, services.PackageChanges{UsedHours: &used})
	if ok {
		t.Fatal("missing package updated")
	}
}

func TestUnreadCounts(t *testing.T) {
	s := New()
	ctx := context.Background()
	ana := addUser(t, s, "ana@example.com")
	carlos := addUser(t, s, "carlos@example.com")
	pkg := &models.LessonPackage{StudentID: ana.ID, InstructorID: carlos.ID, TotalHours: 5, Status: models.PackageConfirmed}
	if err := s.CreatePackage(ctx, pkg); err != nil {
		t.Fatalf("CreatePackage: %v", err)
	}
	for _, content := range []string{"hi", "see you at 10"} {
		if err := s.CreateMessage(ctx, &models.Message{PackageID: pkg.ID, SenderID: carlos.ID, Content: content}); err != nil {
			t.Fatalf("CreateMessage: %v", err)
		}
	}

	if n, _ := s.CountUnread(ctx, ana.ID); n != 2 {
		t.Fatalf("unread = %d", n)
	}
	if n, _ := s.CountUnread(ctx, carlos.ID); n != 0 {
		t.Fatalf("sender unread = %d", n)
	}
	if n, _ := s.MarkMessagesRead(ctx, pkg.ID, ana.ID); n != 2 {
		t.Fatalf("marked = %d", n)
	}
	if n, _ := s.CountUnread(ctx, ana.ID); n != 0 {
		t.Fatalf("unread after read = %d", n)
	}
}
