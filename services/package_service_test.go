package services_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/anjiri1684/drive_tutor/services"
	"github.com/google/uuid"
)

func TestPackageCreate(t *testing.T) {
	f := newFixture(t)

	pkg, err := f.packages.Create(f.ctx, f.student, f.instructor.ID, 10)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if pkg.Status != models.PackagePending {
		t.Errorf("Status = %s, want pending", pkg.Status)
	}
	if pkg.TotalPrice != 950 || pkg.PlatformAmount != 95 || pkg.PlatformFeeRate != 10 {
		t.Errorf("price = %v / %v @ %v, want 950 / 95 @ 10", pkg.TotalPrice, pkg.PlatformAmount, pkg.PlatformFeeRate)
	}
	if pkg.UsedHours != 0 || pkg.TotalHours != 10 {
		t.Errorf("hours = %v/%d", pkg.UsedHours, pkg.TotalHours)
	}
	if f.events.count(services.EventPackageRequested) != 1 {
		t.Errorf("events = %v", f.events.kinds())
	}
}

func TestPackageCreateErrors(t *testing.T) {
	f := newFixture(t)

	if _, err := f.packages.Create(f.ctx, f.student, f.instructor.ID, 7); !errors.Is(err, services.ErrInvalidTier) {
		t.Errorf("7 hours: got %v, want ErrInvalidTier", err)
	}
	if _, err := f.packages.Create(f.ctx, f.student, uuid.New(), 10); !errors.Is(err, services.ErrUnknownInstructor) {
		t.Errorf("unknown instructor: got %v, want ErrUnknownInstructor", err)
	}
	if _, err := f.packages.Create(f.ctx, f.instructor, f.instructor.ID, 10); !errors.Is(err, services.ErrUnauthorizedActor) {
		t.Errorf("instructor creating: got %v, want ErrUnauthorizedActor", err)
	}
}

func TestPackageCreateUsesPlanFee(t *testing.T) {
	f := newFixture(t)
	subs := services.NewSubscriptionService(f.store, 10, nil)
	if _, err := subs.Subscribe(f.ctx, f.instructor, models.PlanPremium); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	pkg, err := f.packages.Create(f.ctx, f.student, f.instructor.ID, 10)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if pkg.PlatformFeeRate != 0 || pkg.PlatformAmount != 0 {
		t.Fatalf("premium fee = %v (%v), want 0", pkg.PlatformFeeRate, pkg.PlatformAmount)
	}
}

func TestPackageConfirm(t *testing.T) {
	f := newFixture(t)
	pkg, err := f.packages.Create(f.ctx, f.student, f.instructor.ID, 5)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := f.packages.Confirm(f.ctx, f.student, pkg.ID); !errors.Is(err, services.ErrUnauthorizedActor) {
		t.Fatalf("student confirm: got %v, want ErrUnauthorizedActor", err)
	}
	other := services.Instructor(f.addInstructor(t, "Outro Instrutor", 80))
	if _, err := f.packages.Confirm(f.ctx, other, pkg.ID); !errors.Is(err, services.ErrUnauthorizedActor) {
		t.Fatalf("foreign instructor confirm: got %v, want ErrUnauthorizedActor", err)
	}

	confirmed, err := f.packages.Confirm(f.ctx, f.instructor, pkg.ID)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if confirmed.Status != models.PackageConfirmed || confirmed.ConfirmedAt == nil {
		t.Fatalf("status = %s confirmedAt = %v", confirmed.Status, confirmed.ConfirmedAt)
	}

	if _, err := f.packages.Confirm(f.ctx, f.instructor, pkg.ID); !errors.Is(err, services.ErrInvalidTransition) {
		t.Fatalf("second confirm: got %v, want ErrInvalidTransition", err)
	}
}

func TestPackageConcurrentConfirmSucceedsOnce(t *testing.T) {
	f := newFixture(t)
	pkg, err := f.packages.Create(f.ctx, f.student, f.instructor.ID, 5)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.packages.Confirm(f.ctx, f.instructor, pkg.ID); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, services.ErrInvalidTransition) {
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("%d confirmations succeeded, want 1", succeeded)
	}
}

func TestPackageCancel(t *testing.T) {
	f := newFixture(t)

	pending, _ := f.packages.Create(f.ctx, f.student, f.instructor.ID, 5)
	if got, err := f.packages.Cancel(f.ctx, f.student, pending.ID); err != nil || got.Status != models.PackageCancelled {
		t.Fatalf("student cancel pending: %v %v", got, err)
	}

	confirmed := f.confirmedPackage(t, 5)
	if got, err := f.packages.Cancel(f.ctx, f.instructor, confirmed.ID); err != nil || got.Status != models.PackageCancelled {
		t.Fatalf("instructor cancel confirmed: %v %v", got, err)
	}

	started := f.confirmedPackage(t, 5)
	if _, err := f.packages.RegisterCompletedHours(f.ctx, f.instructor, started.ID, 1); err != nil {
		t.Fatalf("RegisterCompletedHours: %v", err)
	}
	if _, err := f.packages.Cancel(f.ctx, f.student, started.ID); !errors.Is(err, services.ErrInvalidTransition) {
		t.Fatalf("cancel in_progress: got %v, want ErrInvalidTransition", err)
	}

	stranger := services.Student(f.addStudent(t, "Bruno Alves"))
	fresh, _ := f.packages.Create(f.ctx, f.student, f.instructor.ID, 5)
	if _, err := f.packages.Cancel(f.ctx, stranger, fresh.ID); !errors.Is(err, services.ErrUnauthorizedActor) {
		t.Fatalf("stranger cancel: got %v, want ErrUnauthorizedActor", err)
	}
}

func TestRegisterCompletedHours(t *testing.T) {
	f := newFixture(t)
	pkg := f.confirmedPackage(t, 5)

	pkg, err := f.packages.RegisterCompletedHours(f.ctx, f.instructor, pkg.ID, 2)
	if err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if pkg.Status != models.PackageInProgress || pkg.UsedHours != 2 {
		t.Fatalf("after 2h: %s %v", pkg.Status, pkg.UsedHours)
	}
	if pkg.RemainingHours() != 3 {
		t.Fatalf("remaining = %v, want 3", pkg.RemainingHours())
	}

	if _, err := f.packages.RegisterCompletedHours(f.ctx, f.student, pkg.ID, 1); !errors.Is(err, services.ErrUnauthorizedActor) {
		t.Fatalf("student registration: got %v, want ErrUnauthorizedActor", err)
	}
	if _, err := f.packages.RegisterCompletedHours(f.ctx, f.instructor, pkg.ID, 0); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("zero hours: got %v, want ErrValidation", err)
	}

	// Excess over the total is clamped.
	pkg, err = f.packages.RegisterCompletedHours(f.ctx, f.instructor, pkg.ID, 4)
	if err != nil {
		t.Fatalf("final registration: %v", err)
	}
	if pkg.Status != models.PackageCompleted || pkg.UsedHours != 5 {
		t.Fatalf("after overflow: %s %v", pkg.Status, pkg.UsedHours)
	}
	if !pkg.ReviewEnabled || pkg.CompletedAt == nil {
		t.Fatal("completion must open the review and set CompletedAt")
	}
	if f.events.count(services.EventPackageCompleted) != 1 {
		t.Fatalf("events = %v", f.events.kinds())
	}

	if _, err := f.packages.RegisterCompletedHours(f.ctx, f.instructor, pkg.ID, 1); !errors.Is(err, services.ErrInvalidTransition) {
		t.Fatalf("registration on completed: got %v, want ErrInvalidTransition", err)
	}
}

func TestRegisterHoursOnPendingFails(t *testing.T) {
	f := newFixture(t)
	pkg, _ := f.packages.Create(f.ctx, f.student, f.instructor.ID, 5)

	if _, err := f.packages.RegisterCompletedHours(f.ctx, f.instructor, pkg.ID, 1); !errors.Is(err, services.ErrInvalidTransition) {
		t.Fatalf("got %v, want ErrInvalidTransition", err)
	}
}

func TestRegisterHoursConfirmedToCompletedInOneCall(t *testing.T) {
	f := newFixture(t)
	pkg := f.confirmedPackage(t, 5)

	pkg, err := f.packages.RegisterCompletedHours(f.ctx, f.instructor, pkg.ID, 5)
	if err != nil {
		t.Fatalf("RegisterCompletedHours: %v", err)
	}
	if pkg.Status != models.PackageCompleted {
		t.Fatalf("status = %s, want completed", pkg.Status)
	}
}

func TestConcurrentHourRegistrationsDoNotLoseUpdates(t *testing.T) {
	f := newFixture(t)
	pkg := f.confirmedPackage(t, 20)
	if _, err := f.packages.RegisterCompletedHours(f.ctx, f.instructor, pkg.ID, 1); err != nil {
		t.Fatalf("warm up: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.packages.RegisterCompletedHours(f.ctx, f.instructor, pkg.ID, 1); err != nil {
				t.Errorf("RegisterCompletedHours: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := f.packages.Get(f.ctx, f.instructor, pkg.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UsedHours != 3 {
		t.Fatalf("UsedHours = %v, want 3", got.UsedHours)
	}
}

func TestPackageGetAndList(t *testing.T) {
	f := newFixture(t)
	pkg := f.confirmedPackage(t, 10)
	f.propose(t, f.student, pkg.ID, lessonDay, "10:00", 2)
	if _, err := f.packages.Create(f.ctx, f.student, f.instructor.ID, 5); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := f.packages.Get(f.ctx, f.student, pkg.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Lessons) != 1 {
		t.Fatalf("lessons = %d, want 1", len(got.Lessons))
	}
	if _, err := f.packages.Get(f.ctx, services.Admin(uuid.New()), pkg.ID); err != nil {
		t.Fatalf("admin Get: %v", err)
	}
	if _, err := f.packages.Get(f.ctx, services.Student(uuid.New()), pkg.ID); !errors.Is(err, services.ErrUnauthorizedActor) {
		t.Fatalf("stranger Get: got %v", err)
	}
	if _, err := f.packages.Get(f.ctx, f.student, uuid.New()); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("missing Get: got %v", err)
	}

	all, err := f.packages.List(f.ctx, f.instructor, nil)
	if err != nil || len(all) != 2 {
		t.Fatalf("List all = %d, %v", len(all), err)
	}
	pending, err := f.packages.List(f.ctx, f.student, []models.PackageStatus{models.PackagePending})
	if err != nil || len(pending) != 1 {
		t.Fatalf("List pending = %d, %v", len(pending), err)
	}
	if _, err := f.packages.List(f.ctx, services.Actor{Role: "guest", ID: uuid.New()}, nil); !errors.Is(err, services.ErrUnauthorizedActor) {
		t.Fatalf("unknown role List: got %v", err)
	}
}
