package services

import (
	"errors"
	"slices"
	"testing"

	"github.com/anjiri1684/drive_tutor/models"
)

func TestPackageTransitions(t *testing.T) {
	allowed := map[[2]models.PackageStatus]bool{
		{models.PackagePending, models.PackageConfirmed}:    true,
		{models.PackagePending, models.PackageCancelled}:    true,
		{models.PackageConfirmed, models.PackageInProgress}: true,
		{models.PackageConfirmed, models.PackageCancelled}:  true,
		{models.PackageInProgress, models.PackageCompleted}: true,
	}
	all := []models.PackageStatus{
		models.PackagePending, models.PackageConfirmed, models.PackageInProgress,
		models.PackageCompleted, models.PackageCancelled,
	}
	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]models.PackageStatus{from, to}]
			if got := PackageTransitions.CanTransition(from, to); got != want {
				t.Errorf("%s -> %s = %v, want %v", from, to, got, want)
			}
		}
	}

	if !PackageTransitions.Terminal(models.PackageCompleted) || !PackageTransitions.Terminal(models.PackageCancelled) {
		t.Error("completed and cancelled must be terminal")
	}
	if PackageTransitions.Terminal(models.PackagePending) {
		t.Error("pending is not terminal")
	}
}

func TestTransitionSources(t *testing.T) {
	got := PackageTransitions.Sources(models.PackageCancelled)
	want := []models.PackageStatus{models.PackageConfirmed, models.PackagePending}
	if !slices.Equal(got, want) {
		t.Fatalf("Sources(cancelled) = %v, want %v", got, want)
	}
	if got := LessonTransitions.Sources(models.LessonDone); !slices.Equal(got, []models.LessonStatus{models.LessonConfirmed}) {
		t.Fatalf("Sources(done) = %v", got)
	}
}

func TestTransitionGuard(t *testing.T) {
	if err := transition(LessonTransitions, models.LessonProposed, models.LessonConfirmed); err != nil {
		t.Fatalf("proposed -> confirmed: %v", err)
	}
	err := transition(LessonTransitions, models.LessonDone, models.LessonCancelled)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("done -> cancelled: got %v, want ErrInvalidTransition", err)
	}
}

func TestNextHourStatus(t *testing.T) {
	tests := []struct {
		current models.PackageStatus
		filled  bool
		want    models.PackageStatus
		wantErr bool
	}{
		{models.PackageConfirmed, false, models.PackageInProgress, false},
		{models.PackageConfirmed, true, models.PackageCompleted, false},
		{models.PackageInProgress, false, models.PackageInProgress, false},
		{models.PackageInProgress, true, models.PackageCompleted, false},
		{models.PackagePending, false, "", true},
		{models.PackageCompleted, true, "", true},
		{models.PackageCancelled, false, "", true},
	}
	for _, tt := range tests {
		got, err := nextHourStatus(tt.current, tt.filled)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s filled=%v: err = %v", tt.current, tt.filled, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s filled=%v = %s, want %s", tt.current, tt.filled, got, tt.want)
		}
	}
}
