package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/anjiri1684/drive_tutor/services"
	"github.com/google/uuid"
)

func (s *Store) CreatePackage(_ context.Context, pkg *models.LessonPackage) error {
	defer s.lock()()
	if pkg.ID == uuid.Nil {
		pkg.ID = uuid.New()
	}
	if _, ok := s.st.packages[pkg.ID]; ok {
		return fmt.Errorf("%w: package %s", services.ErrAlreadyExists, pkg.ID)
	}
	stamp(&pkg.CreatedAt, &pkg.UpdatedAt, s.now())
	row := *pkg
	row.Lessons = nil
	s.st.packages[pkg.ID] = row
	return nil
}

func (s *Store) GetPackage(_ context.Context, id uuid.UUID) (*models.LessonPackage, error) {
	defer s.lock()()
	p, ok := s.st.packages[id]
	if !ok {
		return nil, notFound("package", id)
	}
	return &p, nil
}

func (s *Store) ListPackages(_ context.Context, filter services.PackageFilter) ([]models.LessonPackage, error) {
	defer s.lock()()
	var out []models.LessonPackage
	for _, p := range s.st.packages {
		if filter.StudentID != nil && p.StudentID != *filter.StudentID {
			continue
		}
		if filter.InstructorID != nil && p.InstructorID != *filter.InstructorID {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, p.Status) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdatePackageIf(_ context.Context, id uuid.UUID, guard services.PackageGuard, c services.PackageChanges) (bool, error) {
	defer s.lock()()
	p, ok := s.st.packages[id]
	if !ok {
		return false, nil
	}
	if len(guard.Statuses) > 0 && !slices.Contains(guard.Statuses, p.Status) {
		return false, nil
	}
	if guard.UsedHours != nil && p.UsedHours != *guard.UsedHours {
		return false, nil
	}
	if guard.ReviewOpen && (!p.ReviewEnabled || p.ReviewCompleted) {
		return false, nil
	}

	if c.Status != nil {
		p.Status = *c.Status
	}
	if c.UsedHours != nil {
		p.UsedHours = *c.UsedHours
	}
	if c.ConfirmedAt != nil {
		t := *c.ConfirmedAt
		p.ConfirmedAt = &t
	}
	if c.CompletedAt != nil {
		t := *c.CompletedAt
		p.CompletedAt = &t
	}
	if c.ReviewEnabled != nil {
		p.ReviewEnabled = *c.ReviewEnabled
	}
	if c.ReviewCompleted != nil {
		p.ReviewCompleted = *c.ReviewCompleted
	}
	p.UpdatedAt = s.now()
	s.st.packages[id] = p
	return true, nil
}

// Lessons

func (s *Store) CreateLesson(_ context.Context, lesson *models.Lesson) error {
	defer s.lock()()
	if lesson.ID == uuid.Nil {
		lesson.ID = uuid.New()
	}
	if _, ok := s.st.packages[lesson.PackageID]; !ok {
		return notFound("package", lesson.PackageID)
	}
	stamp(&lesson.CreatedAt, &lesson.UpdatedAt, s.now())
	s.st.lessons[lesson.ID] = *lesson
	return nil
}

func (s *Store) GetLesson(_ context.Context, id uuid.UUID) (*models.Lesson, error) {
	defer s.lock()()
	l, ok := s.st.lessons[id]
	if !ok {
		return nil, notFound("lesson", id)
	}
	return &l, nil
}

func (s *Store) FindLessons(_ context.Context, filter services.LessonFilter) ([]models.Lesson, error) {
	defer s.lock()()
	if s.FailLessonLookups {
		return nil, fmt.Errorf("lesson lookup unavailable")
	}
	var out []models.Lesson
	for _, l := range s.st.lessons {
		if filter.PackageID != nil && l.PackageID != *filter.PackageID {
			continue
		}
		if filter.InstructorID != nil && l.InstructorID != *filter.InstructorID {
			continue
		}
		if filter.Date != nil && !l.Day().Equal(*filter.Date) {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, l.Status) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Day().Equal(out[j].Day()) {
			return out[i].Day().Before(out[j].Day())
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (s *Store) UpdateLessonStatusIf(_ context.Context, id uuid.UUID, from []models.LessonStatus, to models.LessonStatus) (bool, error) {
	defer s.lock()()
	l, ok := s.st.lessons[id]
	if !ok || !slices.Contains(from, l.Status) {
		return false, nil
	}
	l.Status = to
	l.UpdatedAt = s.now()
	s.st.lessons[id] = l
	return true, nil
}
