package services_test

import (
	"fmt"
	"testing"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/anjiri1684/drive_tutor/services"
)

// A ten hour package taught as five two hour lessons ends completed, with the
// review open exactly once.
func TestFivePackageLessonsEndToEnd(t *testing.T) {
	f := newFixture(t)

	pkg, err := f.packages.Create(f.ctx, f.student, f.instructor.ID, 10)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if pkg.TotalPrice != 950 || pkg.PlatformAmount != 95 {
		t.Fatalf("price = %v / %v", pkg.TotalPrice, pkg.PlatformAmount)
	}
	if _, err := f.packages.Confirm(f.ctx, f.instructor, pkg.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	for i := 0; i < 5; i++ {
		day := lessonDay.AddDate(0, 0, i)
		lesson := f.scheduled(t, pkg.ID, day, fmt.Sprintf("%02d:00", 8+i), 2)

		_, updated, err := f.lessons.MarkDone(f.ctx, f.instructor, lesson.ID)
		if err != nil {
			t.Fatalf("MarkDone %d: %v", i, err)
		}
		wantUsed := float64(2 * (i + 1))
		if updated.UsedHours != wantUsed {
			t.Fatalf("after lesson %d used = %v, want %v", i+1, updated.UsedHours, wantUsed)
		}
		wantStatus := models.PackageInProgress
		if i == 4 {
			wantStatus = models.PackageCompleted
		}
		if updated.Status != wantStatus {
			t.Fatalf("after lesson %d status = %s, want %s", i+1, updated.Status, wantStatus)
		}
		if updated.ReviewEnabled != (i == 4) {
			t.Fatalf("after lesson %d review enabled = %v", i+1, updated.ReviewEnabled)
		}
	}

	if ok, err := f.reviews.CanReview(f.ctx, f.student, pkg.ID); err != nil || !ok {
		t.Fatalf("CanReview = %v, %v", ok, err)
	}
	if _, err := f.reviews.Submit(f.ctx, f.student, services.SubmitReview{PackageID: pkg.ID, Rating: 5, Comment: "Passei na prova de primeira!"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if ok, _ := f.reviews.CanReview(f.ctx, f.student, pkg.ID); ok {
		t.Fatal("review must close after submission")
	}
	reviewed, err := f.packages.Get(f.ctx, f.student, pkg.ID)
	if err != nil || !reviewed.ReviewCompleted {
		t.Fatalf("review completed = %v, %v", reviewed, err)
	}
	instructor, err := f.store.GetInstructor(f.ctx, f.instructor.ID)
	if err != nil {
		t.Fatalf("GetInstructor: %v", err)
	}
	if instructor.AvgRating != 5 || instructor.ReviewCount != 1 {
		t.Fatalf("instructor rating = %v over %d reviews", instructor.AvgRating, instructor.ReviewCount)
	}

	if n := f.events.count(services.EventPackageCompleted); n != 1 {
		t.Fatalf("completed events = %d, want 1", n)
	}
	if n := f.events.count(services.EventLessonDone); n != 5 {
		t.Fatalf("lesson done events = %d, want 5", n)
	}
}
