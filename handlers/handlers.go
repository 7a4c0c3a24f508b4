package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/anjiri1684/drive_tutor/middleware"
	"github.com/anjiri1684/drive_tutor/services"
	"github.com/anjiri1684/drive_tutor/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var validate = validator.New()

// UploadSigner signs browser uploads; nil when Cloudinary is not configured.
type UploadSigner interface {
	SignUpload(folder string, now time.Time) (*services.UploadSignature, error)
}

// Handlers holds the services behind the HTTP API.
type Handlers struct {
	Auth          *services.AuthService
	Packages      *services.PackageService
	Lessons       *services.LessonService
	Reviews       *services.ReviewService
	Directory     *services.DirectoryService
	Chat          *services.ChatService
	Checkout      *services.CheckoutService
	Subscriptions *services.SubscriptionService
	Certificates  *services.CertificateService
	Admin         *services.AdminService

	Hub       *websocket.Hub
	Uploads   UploadSigner
	JWTSecret string
	Log       *zap.Logger
}

// ErrorHandler is the fiber fallback for errors no handler mapped itself.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		log.Error("unhandled request error", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Something went wrong."})
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidTier):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrUnauthorizedActor):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrUnknownInstructor):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrScheduleConflict),
		errors.Is(err, services.ErrReviewNotAllowed),
		errors.Is(err, services.ErrAlreadyExists):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrPaymentProvider):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *Handlers) respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		h.Log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": services.Message(err)})
}

// parseBody decodes and validates a JSON request body. The returned error is
// a *fiber.Error rendered by ErrorHandler.
func parseBody(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

func actor(c *fiber.Ctx) services.Actor {
	a, _ := middleware.ActorFromCtx(c)
	return a
}

func splitQuery(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
