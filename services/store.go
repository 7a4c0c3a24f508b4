package services

import (
	"context"
	"time"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/google/uuid"
)

// PackageGuard is the precondition of a conditional package write. The
// write applies only when every set field still matches the stored row.
type PackageGuard struct {
	Statuses  []models.PackageStatus
	UsedHours *float64
	// ReviewOpen requires review_enabled and not review_completed.
	ReviewOpen bool
}

// PackageChanges lists the columns to set; nil fields are left untouched.
type PackageChanges struct {
	Status          *models.PackageStatus
	UsedHours       *float64
	ConfirmedAt     *time.Time
	CompletedAt     *time.Time
	ReviewEnabled   *bool
	ReviewCompleted *bool
}

type PackageFilter struct {
	StudentID    *uuid.UUID
	InstructorID *uuid.UUID
	Statuses     []models.PackageStatus
}

type LessonFilter struct {
	PackageID    *uuid.UUID
	InstructorID *uuid.UUID
	Date         *time.Time
	Statuses     []models.LessonStatus
}

type InstructorFilter struct {
	Query      string
	City       string
	Category   string
	MaxRate    float64
	OnlyActive bool
}

type DashboardStats struct {
	Users             int64                          `json:"users"`
	Instructors       int64                          `json:"instructors"`
	Students          int64                          `json:"students"`
	PackagesByStatus  map[models.PackageStatus]int64 `json:"packages_by_status"`
	CompletedRevenue  float64                        `json:"completed_revenue"`
	PlatformRevenue   float64                        `json:"platform_revenue"`
	AverageRating     float64                        `json:"average_rating"`
	ActiveSubscribers int64                          `json:"active_subscribers"`
}

type PackageRepository interface {
	CreatePackage(ctx context.Context, pkg *models.LessonPackage) error
	GetPackage(ctx context.Context, id uuid.UUID) (*models.LessonPackage, error)
	ListPackages(ctx context.Context, filter PackageFilter) ([]models.LessonPackage, error)
	// UpdatePackageIf applies changes in one conditional write and reports
	// whether a row matched the guard.
	UpdatePackageIf(ctx context.Context, id uuid.UUID, guard PackageGuard, changes PackageChanges) (bool, error)
}

type LessonRepository interface {
	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	GetLesson(ctx context.Context, id uuid.UUID) (*models.Lesson, error)
	FindLessons(ctx context.Context, filter LessonFilter) ([]models.Lesson, error)
	UpdateLessonStatusIf(ctx context.Context, id uuid.UUID, from []models.LessonStatus, to models.LessonStatus) (bool, error)
}

type ReviewRepository interface {
	CreateReview(ctx context.Context, review *models.Review) error
	ListReviewsByInstructor(ctx context.Context, instructorID uuid.UUID) ([]models.Review, error)
	InstructorRatings(ctx context.Context, instructorID uuid.UUID) ([]int, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByResetToken(ctx context.Context, token string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context, role models.Role) ([]models.User, error)
}

type DirectoryRepository interface {
	CreateInstructor(ctx context.Context, instructor *models.Instructor) error
	CreateStudent(ctx context.Context, student *models.Student) error
	GetInstructor(ctx context.Context, id uuid.UUID) (*models.Instructor, error)
	GetStudent(ctx context.Context, id uuid.UUID) (*models.Student, error)
	SaveInstructor(ctx context.Context, instructor *models.Instructor) error
	SearchInstructors(ctx context.Context, filter InstructorFilter) ([]models.Instructor, error)
	UpdateInstructorRating(ctx context.Context, id uuid.UUID, average float64, count int) error
	UpdateSubscription(ctx context.Context, id uuid.UUID, active bool, plan *models.PlanID, expiresAt *time.Time) error
	// ExpireSubscriptions deactivates every subscription expired at now.
	ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error)

	AddFavorite(ctx context.Context, fav *models.Favorite) error
	RemoveFavorite(ctx context.Context, studentID, instructorID uuid.UUID) error
	ListFavorites(ctx context.Context, studentID uuid.UUID) ([]models.Instructor, error)
}

type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, packageID uuid.UUID) ([]models.Message, error)
	// MarkMessagesRead flags every message in the package not sent by readerID.
	MarkMessagesRead(ctx context.Context, packageID, readerID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	UpdatePaymentIf(ctx context.Context, id uuid.UUID, from models.PaymentStatus, to models.PaymentStatus, txnID *string) (bool, error)
	ListPayments(ctx context.Context) ([]models.Payment, error)
}

type CertificateRepository interface {
	CreateCertificate(ctx context.Context, cert *models.Certificate) error
	GetCertificateByPackage(ctx context.Context, packageID uuid.UUID) (*models.Certificate, error)
	ListCertificatesByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Certificate, error)
}

type StatsRepository interface {
	DashboardStats(ctx context.Context) (*DashboardStats, error)
}

// Store is the full persistence surface. Transaction runs fn against a
// store bound to one transaction; returning an error rolls it back.
type Store interface {
	PackageRepository
	LessonRepository
	ReviewRepository
	UserRepository
	DirectoryRepository
	MessageRepository
	PaymentRepository
	CertificateRepository
	StatsRepository

	Transaction(ctx context.Context, fn func(tx Store) error) error
}
