package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/drive_tutor/database/memstore"
	"github.com/anjiri1684/drive_tutor/models"
	"github.com/anjiri1684/drive_tutor/services"
	"github.com/google/uuid"
)

type recorder struct {
	mu     sync.Mutex
	events []services.Event
}

func (r *recorder) Publish(_ context.Context, e services.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []services.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]services.EventKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

func (r *recorder) count(kind services.EventKind) int {
	n := 0
	for _, k := range r.kinds() {
		if k == kind {
			n++
		}
	}
	return n
}

type fixture struct {
	ctx      context.Context
	store    *memstore.Store
	events   *recorder
	packages *services.PackageService
	lessons  *services.LessonService
	reviews  *services.ReviewService
	chat     *services.ChatService

	student    services.Actor
	instructor services.Actor
}

var lessonDay = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:    context.Background(),
		store:  memstore.New(),
		events: &recorder{},
	}
	f.packages = services.NewPackageService(f.store, services.NewPricing(10), f.events, nil)
	f.lessons = services.NewLessonService(f.store, f.packages, f.events, nil)
	f.reviews = services.NewReviewService(f.store, f.events, nil)
	f.chat = services.NewChatService(f.store, f.events, nil)

	f.student = services.Student(f.addStudent(t, "Ana Souza"))
	f.instructor = services.Instructor(f.addInstructor(t, "Carlos Lima", 100))
	return f
}

func (f *fixture) addUser(t *testing.T, name string, role models.Role) uuid.UUID {
	t.Helper()
	u := &models.User{
		ID:       uuid.New(),
		FullName: name,
		Email:    uuid.NewString() + "@example.com",
		Role:     role,
		IsActive: true,
	}
	if err := f.store.CreateUser(f.ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u.ID
}

func (f *fixture) addStudent(t *testing.T, name string) uuid.UUID {
	t.Helper()
	id := f.addUser(t, name, models.RoleStudent)
	if err := f.store.CreateStudent(f.ctx, &models.Student{UserID: id, City: "São Paulo"}); err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}
	return id
}

func (f *fixture) addInstructor(t *testing.T, name string, rate float64) uuid.UUID {
	t.Helper()
	id := f.addUser(t, name, models.RoleInstructor)
	if err := f.store.CreateInstructor(f.ctx, &models.Instructor{UserID: id, HourlyRate: rate, City: "São Paulo", Category: "B"}); err != nil {
		t.Fatalf("CreateInstructor: %v", err)
	}
	return id
}

// confirmedPackage creates and confirms a package for the fixture parties.
func (f *fixture) confirmedPackage(t *testing.T, hours int) *models.LessonPackage {
	t.Helper()
	pkg, err := f.packages.Create(f.ctx, f.student, f.instructor.ID, hours)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	pkg, err = f.packages.Confirm(f.ctx, f.instructor, pkg.ID)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	return pkg
}

func (f *fixture) propose(t *testing.T, by services.Actor, pkgID uuid.UUID, day time.Time, start string, hours float64) *models.Lesson {
	t.Helper()
	lesson, err := f.lessons.Propose(f.ctx, by, services.ProposeLesson{
		PackageID:     pkgID,
		Date:          day,
		StartTime:     start,
		DurationHours: hours,
	})
	if err != nil {
		t.Fatalf("Propose %s: %v", start, err)
	}
	return lesson
}

func (f *fixture) scheduled(t *testing.T, pkgID uuid.UUID, day time.Time, start string, hours float64) *models.Lesson {
	t.Helper()
	lesson := f.propose(t, f.student, pkgID, day, start, hours)
	lesson, err := f.lessons.Confirm(f.ctx, f.instructor, lesson.ID)
	if err != nil {
		t.Fatalf("Confirm lesson %s: %v", start, err)
	}
	return lesson
}
