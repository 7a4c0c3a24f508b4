package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", Protected(testSecret), func(c *fiber.Ctx) error {
		actor, _ := ActorFromCtx(c)
		return c.JSON(fiber.Map{"id": actor.ID, "role": actor.Role})
	})
	app.Get("/admin", Protected(testSecret), AdminRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestProtected(t *testing.T) {
	id := uuid.New()
	valid := signed(t, jwt.MapClaims{"user_id": id.String(), "role": "student", "exp": time.Now().Add(time.Hour).Unix()})
	expired := signed(t, jwt.MapClaims{"user_id": id.String(), "role": "student", "exp": time.Now().Add(-time.Hour).Unix()})
	badRole := signed(t, jwt.MapClaims{"user_id": id.String(), "role": "guest", "exp": time.Now().Add(time.Hour).Unix()})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing token", "", fiber.StatusBadRequest},
		{"valid token", "Bearer " + valid, fiber.StatusOK},
		{"expired token", "Bearer " + expired, fiber.StatusUnauthorized},
		{"unknown role", "Bearer " + badRole, fiber.StatusUnauthorized},
	}

	app := newApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestRoleGuards(t *testing.T) {
	app := newApp()
	for role, want := range map[models.Role]int{
		models.RoleAdmin:      fiber.StatusNoContent,
		models.RoleStudent:    fiber.StatusForbidden,
		models.RoleInstructor: fiber.StatusForbidden,
	} {
		token := signed(t, jwt.MapClaims{"user_id": uuid.NewString(), "role": string(role), "exp": time.Now().Add(time.Hour).Unix()})
		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		if resp.StatusCode != want {
			t.Errorf("%s: status = %d, want %d", role, resp.StatusCode, want)
		}
	}
}
