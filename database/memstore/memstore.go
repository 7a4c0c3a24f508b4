// Package memstore keeps every entity in process memory. It backs local runs
// without DATABASE_URL and the service tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/anjiri1684/drive_tutor/services"
	"github.com/google/uuid"
)

type favoriteKey struct {
	student    uuid.UUID
	instructor uuid.UUID
}

type state struct {
	users        map[uuid.UUID]models.User
	instructors  map[uuid.UUID]models.Instructor
	students     map[uuid.UUID]models.Student
	favorites    map[favoriteKey]models.Favorite
	packages     map[uuid.UUID]models.LessonPackage
	lessons      map[uuid.UUID]models.Lesson
	reviews      map[uuid.UUID]models.Review
	messages     map[uuid.UUID]models.Message
	payments     map[uuid.UUID]models.Payment
	certificates map[uuid.UUID]models.Certificate
}

func newState() *state {
	return &state{
		users:        map[uuid.UUID]models.User{},
		instructors:  map[uuid.UUID]models.Instructor{},
		students:     map[uuid.UUID]models.Student{},
		favorites:    map[favoriteKey]models.Favorite{},
		packages:     map[uuid.UUID]models.LessonPackage{},
		lessons:      map[uuid.UUID]models.Lesson{},
		reviews:      map[uuid.UUID]models.Review{},
		messages:     map[uuid.UUID]models.Message{},
		payments:     map[uuid.UUID]models.Payment{},
		certificates: map[uuid.UUID]models.Certificate{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (st *state) clone() *state {
	return &state{
		users:        cloneMap(st.users),
		instructors:  cloneMap(st.instructors),
		students:     cloneMap(st.students),
		favorites:    cloneMap(st.favorites),
		packages:     cloneMap(st.packages),
		lessons:      cloneMap(st.lessons),
		reviews:      cloneMap(st.reviews),
		messages:     cloneMap(st.messages),
		payments:     cloneMap(st.payments),
		certificates: cloneMap(st.certificates),
	}
}

// Store is safe for concurrent use. Transactions work on a copy of the data
// that replaces the original only when fn succeeds.
type Store struct {
	mu   *sync.Mutex
	st   *state
	inTx bool
	now  func() time.Time

	// FailLessonLookups makes FindLessons fail, for exercising fail-open paths.
	FailLessonLookups bool
}

var _ services.Store = (*Store)(nil)

func New() *Store {
	return &Store{mu: &sync.Mutex{}, st: newState(), now: time.Now}
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Transaction(ctx context.Context, fn func(tx services.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{mu: s.mu, st: s.st.clone(), inTx: true, now: s.now, FailLessonLookups: s.FailLessonLookups}
	if err := fn(tx); err != nil {
		return err
	}
	*s.st = *tx.st
	return nil
}

func notFound(what string, id any) error {
	return fmt.Errorf("%w: %s %v", services.ErrNotFound, what, id)
}

// Users

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	defer s.lock()()
	for _, u := range s.st.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("%w: email %s", services.ErrAlreadyExists, user.Email)
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	stamp(&user.CreatedAt, &user.UpdatedAt, s.now())
	s.st.users[user.ID] = *user
	return nil
}

func (s *Store) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	defer s.lock()()
	u, ok := s.st.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	defer s.lock()()
	for _, u := range s.st.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, notFound("user", email)
}

func (s *Store) GetUserByResetToken(_ context.Context, token string) (*models.User, error) {
	defer s.lock()()
	for _, u := range s.st.users {
		if u.ResetPasswordToken != nil && *u.ResetPasswordToken == token {
			return &u, nil
		}
	}
	return nil, notFound("reset token", "")
}

func (s *Store) SaveUser(_ context.Context, user *models.User) error {
	defer s.lock()()
	if _, ok := s.st.users[user.ID]; !ok {
		return notFound("user", user.ID)
	}
	s.st.users[user.ID] = *user
	return nil
}

func (s *Store) ListUsers(_ context.Context, role models.Role) ([]models.User, error) {
	defer s.lock()()
	var out []models.User
	for _, u := range s.st.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Directory

func (s *Store) CreateInstructor(_ context.Context, instructor *models.Instructor) error {
	defer s.lock()()
	if _, ok := s.st.instructors[instructor.UserID]; ok {
		return fmt.Errorf("%w: instructor %s", services.ErrAlreadyExists, instructor.UserID)
	}
	stamp(&instructor.CreatedAt, &instructor.UpdatedAt, s.now())
	row := *instructor
	row.User = models.User{}
	s.st.instructors[instructor.UserID] = row
	return nil
}

func (s *Store) CreateStudent(_ context.Context, student *models.Student) error {
	defer s.lock()()
	if _, ok := s.st.students[student.UserID]; ok {
		return fmt.Errorf("%w: student %s", services.ErrAlreadyExists, student.UserID)
	}
	stamp(&student.CreatedAt, &student.UpdatedAt, s.now())
	row := *student
	row.User = models.User{}
	s.st.students[student.UserID] = row
	return nil
}

func (s *Store) GetInstructor(_ context.Context, id uuid.UUID) (*models.Instructor, error) {
	defer s.lock()()
	i, ok := s.st.instructors[id]
	if !ok {
		return nil, notFound("instructor", id)
	}
	i.User = s.st.users[id]
	return &i, nil
}

func (s *Store) GetStudent(_ context.Context, id uuid.UUID) (*models.Student, error) {
	defer s.lock()()
	st, ok := s.st.students[id]
	if !ok {
		return nil, notFound("student", id)
	}
	st.User = s.st.users[id]
	return &st, nil
}

func (s *Store) SaveInstructor(_ context.Context, instructor *models.Instructor) error {
	defer s.lock()()
	if _, ok := s.st.instructors[instructor.UserID]; !ok {
		return notFound("instructor", instructor.UserID)
	}
	row := *instructor
	row.User = models.User{}
	row.UpdatedAt = s.now()
	s.st.instructors[instructor.UserID] = row
	return nil
}

func (s *Store) SearchInstructors(_ context.Context, filter services.InstructorFilter) ([]models.Instructor, error) {
	defer s.lock()()
	query := strings.ToLower(filter.Query)
	var out []models.Instructor
	for id, i := range s.st.instructors {
		u := s.st.users[id]
		if filter.OnlyActive && !u.IsActive {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(u.FullName), query) &&
			!strings.Contains(strings.ToLower(i.City), query) {
			continue
		}
		if filter.City != "" && !strings.EqualFold(i.City, filter.City) {
			continue
		}
		if filter.Category != "" && i.Category != filter.Category {
			continue
		}
		if filter.MaxRate > 0 && i.HourlyRate > filter.MaxRate {
			continue
		}
		i.User = u
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].AvgRating > out[b].AvgRating })
	return out, nil
}

func (s *Store) UpdateInstructorRating(_ context.Context, id uuid.UUID, average float64, count int) error {
	defer s.lock()()
	i, ok := s.st.instructors[id]
	if !ok {
		return notFound("instructor", id)
	}
	i.AvgRating = average
	i.ReviewCount = count
	s.st.instructors[id] = i
	return nil
}

func (s *Store) UpdateSubscription(_ context.Context, id uuid.UUID, active bool, plan *models.PlanID, expiresAt *time.Time) error {
	defer s.lock()()
	i, ok := s.st.instructors[id]
	if !ok {
		return notFound("instructor", id)
	}
	i.SubscriptionActive = active
	i.SubscriptionPlan = plan
	i.SubscriptionExpiresAt = expiresAt
	s.st.instructors[id] = i
	return nil
}

func (s *Store) ExpireSubscriptions(_ context.Context, now time.Time) (int64, error) {
	defer s.lock()()
	var n int64
	for id, i := range s.st.instructors {
		if i.SubscriptionActive && i.SubscriptionExpiresAt != nil && !i.SubscriptionExpiresAt.After(now) {
			i.SubscriptionActive = false
			s.st.instructors[id] = i
			n++
		}
	}
	return n, nil
}

func (s *Store) AddFavorite(_ context.Context, fav *models.Favorite) error {
	defer s.lock()()
	key := favoriteKey{fav.StudentID, fav.InstructorID}
	if _, ok := s.st.favorites[key]; !ok {
		s.st.favorites[key] = *fav
	}
	return nil
}

func (s *Store) RemoveFavorite(_ context.Context, studentID, instructorID uuid.UUID) error {
	defer s.lock()()
	delete(s.st.favorites, favoriteKey{studentID, instructorID})
	return nil
}

func (s *Store) ListFavorites(_ context.Context, studentID uuid.UUID) ([]models.Instructor, error) {
	defer s.lock()()
	var favs []models.Favorite
	for k, f := range s.st.favorites {
		if k.student == studentID {
			favs = append(favs, f)
		}
	}
	sort.Slice(favs, func(i, j int) bool { return favs[i].CreatedAt.After(favs[j].CreatedAt) })

	out := make([]models.Instructor, 0, len(favs))
	for _, f := range favs {
		if i, ok := s.st.instructors[f.InstructorID]; ok {
			i.User = s.st.users[f.InstructorID]
			out = append(out, i)
		}
	}
	return out, nil
}

func stamp(created, updated *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = now
	}
}
