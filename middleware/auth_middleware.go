package middleware

import (
	"errors"
	"strings"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/anjiri1684/drive_tutor/services"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const actorKey = "actor"

var errBadClaims = errors.New("invalid token claims")

// Protected verifies the bearer token and stores the caller as an Actor.
func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     []byte(secret),
		ErrorHandler:   jwtError,
		SuccessHandler: storeActor,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if strings.EqualFold(err.Error(), "Missing or malformed JWT") {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT", "data": nil})
}

func storeActor(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return jwtError(c, errBadClaims)
	}
	actor, err := ActorFromClaims(token.Claims)
	if err != nil {
		return jwtError(c, err)
	}
	c.Locals(actorKey, actor)
	return c.Next()
}

// ActorFromClaims reads the user_id and role claims issued at login.
func ActorFromClaims(claims jwt.Claims) (services.Actor, error) {
	mc, ok := claims.(jwt.MapClaims)
	if !ok {
		return services.Actor{}, errBadClaims
	}
	rawID, _ := mc["user_id"].(string)
	rawRole, _ := mc["role"].(string)
	id, err := uuid.Parse(rawID)
	if err != nil {
		return services.Actor{}, errBadClaims
	}
	switch role := models.Role(rawRole); role {
	case models.RoleStudent, models.RoleInstructor, models.RoleAdmin:
		return services.Actor{Role: role, ID: id}, nil
	default:
		return services.Actor{}, errBadClaims
	}
}

// ActorFromCtx returns the caller stored by Protected.
func ActorFromCtx(c *fiber.Ctx) (services.Actor, bool) {
	actor, ok := c.Locals(actorKey).(services.Actor)
	return actor, ok
}

func requireRole(role models.Role, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromCtx(c)
		if !ok || actor.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": message})
		}
		return c.Next()
	}
}

func AdminRequired() fiber.Handler {
	return requireRole(models.RoleAdmin, "Forbidden: Admin access required")
}

func InstructorRequired() fiber.Handler {
	return requireRole(models.RoleInstructor, "Forbidden: Instructor access required")
}

func StudentRequired() fiber.Handler {
	return requireRole(models.RoleStudent, "Forbidden: Student access required")
}
