package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenLifetime      = 72 * time.Hour
	resetTokenLifetime = 15 * time.Minute
)

// Mailer sends one transactional email.
type Mailer interface {
	Send(ctx context.Context, toName, toEmail, subject, htmlContent string) error
}

type RegisterInput struct {
	FullName   string
	Email      string
	Password   string
	Role       models.Role
	City       string
	HourlyRate float64
}

type AuthService struct {
	store      Store
	mailer     Mailer
	secret     []byte
	resetURL   string
	log        *zap.Logger
	now        func() time.Time
	bcryptCost int
}

func NewAuthService(store Store, mailer Mailer, secret, resetURL string, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		store:      store,
		mailer:     mailer,
		secret:     []byte(secret),
		resetURL:   resetURL,
		log:        log,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// WithClock allows tests to override the clock used by the service.
func (s *AuthService) WithClock(fn func() time.Time) {
	s.now = fn
}

// WithBcryptCost lowers hashing cost in tests.
func (s *AuthService) WithBcryptCost(cost int) {
	s.bcryptCost = cost
}

// Register creates the account and its student or instructor profile in
// one transaction.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	switch in.Role {
	case models.RoleStudent, models.RoleInstructor:
	case models.RoleAdmin:
		return nil, fmt.Errorf("%w: admins cannot self-register", ErrUnauthorizedActor)
	default:
		return nil, invalid("unknown role %q", in.Role)
	}
	if in.HourlyRate < 0 {
		return nil, invalid("hourly rate cannot be negative")
	}

	email := normalizeEmail(in.Email)
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", ErrAlreadyExists)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, storeErr(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &models.User{
		ID:        uuid.New(),
		FullName:  strings.TrimSpace(in.FullName),
		Email:     email,
		Password:  string(hashed),
		Role:      in.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.store.Transaction(ctx, func(tx Store) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return storeErr(err)
		}
		if in.Role == models.RoleInstructor {
			return storeErr(tx.CreateInstructor(ctx, &models.Instructor{
				UserID:     user.ID,
				City:       strings.TrimSpace(in.City),
				HourlyRate: round2(in.HourlyRate),
				CreatedAt:  now,
				UpdatedAt:  now,
			}))
		}
		return storeErr(tx.CreateStudent(ctx, &models.Student{
			UserID:    user.ID,
			City:      strings.TrimSpace(in.City),
			CreatedAt: now,
			UpdatedAt: now,
		}))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	s.mail(ctx, user, "Welcome!", "<h1>Welcome!</h1><p>Thank you for registering.</p>")
	return user, nil
}

// Login checks credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, storeErr(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, fmt.Errorf("%w: account disabled", ErrUnauthorizedActor)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// IssueToken signs the claims the auth middleware reads back.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    string(user.Role),
		"exp":     s.now().Add(tokenLifetime).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ForgotPassword emails a one-time reset link. Unknown addresses succeed
// silently.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return storeErr(err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)
	expires := s.now().Add(resetTokenLifetime)
	user.ResetPasswordToken = &token
	user.ResetPasswordTokenExpiresAt = &expires
	if err := s.store.SaveUser(ctx, user); err != nil {
		return storeErr(err)
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.resetURL, token)
	s.mail(ctx, user, "Your Password Reset Link",
		fmt.Sprintf("<h1>Password Reset</h1><p>Click the link below to reset your password. This link is valid for 15 minutes.</p><p><a href='%s'>Reset Password</a></p>", link))
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.store.GetUserByResetToken(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return invalid("invalid or expired reset token")
	}
	if err != nil {
		return storeErr(err)
	}

	expired := user.ResetPasswordTokenExpiresAt == nil || user.ResetPasswordTokenExpiresAt.Before(s.now())
	user.ResetPasswordToken = nil
	user.ResetPasswordTokenExpiresAt = nil
	if expired {
		if err := s.store.SaveUser(ctx, user); err != nil {
			return storeErr(err)
		}
		return invalid("invalid or expired reset token")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hashed)
	user.UpdatedAt = s.now()
	return storeErr(s.store.SaveUser(ctx, user))
}

func (s *AuthService) Me(ctx context.Context, actor Actor) (*models.User, error) {
	user, err := s.store.GetUser(ctx, actor.ID)
	return user, storeErr(err)
}

func (s *AuthService) mail(ctx context.Context, user *models.User, subject, body string) {
	if s.mailer == nil {
		return
	}
	go func() {
		if err := s.mailer.Send(context.WithoutCancel(ctx), user.FullName, user.Email, subject, body); err != nil {
			s.log.Warn("email not sent", zap.String("to", user.Email), zap.Error(err))
		}
	}()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
