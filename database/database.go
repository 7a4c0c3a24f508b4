package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/anjiri1684/drive_tutor/services"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	log.Info("database connected")
	return db, nil
}

// cascades lists relations whose rows are deleted with their owner.
var cascades = []struct {
	model    interface{}
	relation string
}{
	{&models.LessonPackage{}, "Lessons"},
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Instructor{},
		&models.Student{},
		&models.Favorite{},
		&models.LessonPackage{},
		&models.Lesson{},
		&models.Review{},
		&models.Message{},
		&models.Payment{},
		&models.Certificate{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	// Foreign keys are off during AutoMigrate; the cascades are created here.
	for _, c := range cascades {
		if db.Migrator().HasConstraint(c.model, c.relation) {
			continue
		}
		if err := db.Migrator().CreateConstraint(c.model, c.relation); err != nil {
			return fmt.Errorf("create %s constraint: %w", c.relation, err)
		}
	}
	log.Info("database migration successful")
	return nil
}

// SeedAdmin creates the admin account once. It works against any store so
// the in-memory mode gets an admin too.
func SeedAdmin(ctx context.Context, store services.Store, fullName, email, password string, log *zap.Logger) error {
	if email == "" || password == "" {
		log.Warn("admin seed skipped, ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}

	_, err := store.GetUserByEmail(ctx, email)
	if err == nil {
		log.Info("admin user already exists")
		return nil
	}
	if !errors.Is(err, services.ErrNotFound) {
		return fmt.Errorf("check admin user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		ID:       uuid.New(),
		FullName: fullName,
		Email:    email,
		Password: string(hashed),
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := store.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	log.Info("admin user seeded", zap.String("email", email))
	return nil
}
