package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anjiri1684/drive_tutor/database/memstore"
	"github.com/anjiri1684/drive_tutor/handlers"
	"github.com/anjiri1684/drive_tutor/payments"
	"github.com/anjiri1684/drive_tutor/routes"
	"github.com/anjiri1684/drive_tutor/services"
	"github.com/anjiri1684/drive_tutor/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "handler-test-secret"

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memstore.New()
	log := zap.NewNop()
	hub := websocket.NewHub(log)

	auth := services.NewAuthService(store, nil, testSecret, "http://localhost:3000", log)
	auth.WithBcryptCost(bcrypt.MinCost)
	packages := services.NewPackageService(store, services.NewPricing(10), hub, log)

	h := &handlers.Handlers{
		Auth:          auth,
		Packages:      packages,
		Lessons:       services.NewLessonService(store, packages, hub, log),
		Reviews:       services.NewReviewService(store, hub, log),
		Directory:     services.NewDirectoryService(store, log),
		Chat:          services.NewChatService(store, hub, log),
		Checkout:      services.NewCheckoutService(store, payments.NewRegistry(payments.NewLocal()), log),
		Subscriptions: services.NewSubscriptionService(store, 10, log),
		Certificates:  services.NewCertificateService(store, nil, nil, log),
		Admin:         services.NewAdminService(store, log),
		Hub:           hub,
		JWTSecret:     testSecret,
		Log:           log,
	}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(log)})
	routes.Setup(app, h)
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	}
	return resp.StatusCode, out
}

// signup registers and logs in, returning the token and user id.
func signup(t *testing.T, app *fiber.App, name, email, role string, rate float64) (string, string) {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"full_name":   name,
		"email":       email,
		"password":    "secret123",
		"role":        role,
		"city":        "São Paulo",
		"hourly_rate": rate,
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: %d %v", email, status, body)
	}
	status, body = call(t, app, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email":    email,
		"password": "secret123",
	})
	if status != http.StatusOK {
		t.Fatalf("login %s: %d %v", email, status, body)
	}
	user := body["user"].(map[string]interface{})
	return body["token"].(string), user["id"].(string)
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)

	status, body := call(t, app, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"full_name": "Al",
		"email":     "not-an-email",
		"password":  "123",
		"role":      "admin",
	})
	if status != http.StatusBadRequest || body["error"] == nil {
		t.Fatalf("invalid register: %d %v", status, body)
	}

	signup(t, app, "Ana Souza", "ana@example.com", "student", 0)
	status, _ = call(t, app, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"full_name": "Ana Again",
		"email":     "ana@example.com",
		"password":  "secret123",
		"role":      "student",
	})
	if status != http.StatusConflict {
		t.Fatalf("duplicate register: %d", status)
	}

	status, _ = call(t, app, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"email": "ana@example.com", "password": "wrong"})
	if status != http.StatusUnauthorized {
		t.Fatalf("bad login: %d", status)
	}
}

func TestPackageAndLessonFlow(t *testing.T) {
	app := newTestApp(t)
	studentToken, _ := signup(t, app, "Ana Souza", "ana@example.com", "student", 0)
	instructorToken, instructorID := signup(t, app, "Carlos Lima", "carlos@example.com", "instructor", 100)

	status, me := call(t, app, http.MethodGet, "/api/v1/auth/me", studentToken, nil)
	if status != http.StatusOK || me["email"] != "ana@example.com" {
		t.Fatalf("me: %d %v", status, me)
	}

	status, quote := call(t, app, http.MethodGet, "/api/v1/quote?instructor_id="+instructorID+"&hours=10", "", nil)
	if status != http.StatusOK {
		t.Fatalf("quote: %d %v", status, quote)
	}

	status, _ = call(t, app, http.MethodPost, "/api/v1/packages", instructorToken, fiber.Map{"instructor_id": instructorID, "hours": 10})
	if status != http.StatusForbidden {
		t.Fatalf("instructor creating package: %d", status)
	}
	status, body := call(t, app, http.MethodPost, "/api/v1/packages", studentToken, fiber.Map{"instructor_id": instructorID, "hours": 7})
	if status != http.StatusBadRequest {
		t.Fatalf("invalid tier: %d %v", status, body)
	}

	status, pkg := call(t, app, http.MethodPost, "/api/v1/packages", studentToken, fiber.Map{"instructor_id": instructorID, "hours": 10})
	if status != http.StatusCreated {
		t.Fatalf("create package: %d %v", status, pkg)
	}
	if pkg["total_price"] != 950.0 || pkg["status"] != "pending" {
		t.Fatalf("package = %v", pkg)
	}
	pkgPath := "/api/v1/packages/" + pkg["id"].(string)

	status, confirmed := call(t, app, http.MethodPost, pkgPath+"/confirm", instructorToken, nil)
	if status != http.StatusOK || confirmed["status"] != "confirmed" {
		t.Fatalf("confirm: %d %v", status, confirmed)
	}
	status, _ = call(t, app, http.MethodPost, pkgPath+"/confirm", instructorToken, nil)
	if status != http.StatusConflict {
		t.Fatalf("double confirm: %d", status)
	}

	lessonBody := fiber.Map{"date": "2026-03-10", "start_time": "10:00", "duration_hours": 2}
	status, lesson := call(t, app, http.MethodPost, pkgPath+"/lessons", studentToken, lessonBody)
	if status != http.StatusCreated || lesson["status"] != "proposed" {
		t.Fatalf("propose: %d %v", status, lesson)
	}
	lessonPath := "/api/v1/lessons/" + lesson["id"].(string)

	overlapBody := fiber.Map{"date": "2026-03-10", "start_time": "11:00", "duration_hours": 1}
	status, overlap := call(t, app, http.MethodPost, pkgPath+"/lessons", studentToken, overlapBody)
	if status != http.StatusCreated {
		t.Fatalf("overlapping proposal while the slot is only proposed: %d %v", status, overlap)
	}

	status, _ = call(t, app, http.MethodPost, lessonPath+"/confirm", studentToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("proposer confirming: %d", status)
	}
	status, lesson = call(t, app, http.MethodPost, lessonPath+"/confirm", instructorToken, nil)
	if status != http.StatusOK || lesson["status"] != "confirmed" {
		t.Fatalf("confirm lesson: %d %v", status, lesson)
	}

	status, clash := call(t, app, http.MethodGet,
		"/api/v1/lessons/conflicts?instructor_id="+instructorID+"&date=2026-03-10&start_time=11:00&duration_hours=1", studentToken, nil)
	if status != http.StatusOK || clash["conflict"] != true {
		t.Fatalf("conflict check: %d %v", status, clash)
	}
	status, _ = call(t, app, http.MethodPost, pkgPath+"/lessons", studentToken, overlapBody)
	if status != http.StatusConflict {
		t.Fatalf("proposal over a confirmed lesson: %d", status)
	}
	status, _ = call(t, app, http.MethodPost, "/api/v1/lessons/"+overlap["id"].(string)+"/confirm", instructorToken, nil)
	if status != http.StatusConflict {
		t.Fatalf("confirming the overlapping proposal: %d", status)
	}
	status, _ = call(t, app, http.MethodPost, pkgPath+"/lessons", studentToken,
		fiber.Map{"date": "2026-03-10", "start_time": "12:00", "duration_hours": 1})
	if status != http.StatusCreated {
		t.Fatalf("slot starting when the confirmed lesson ends: %d", status)
	}

	status, done := call(t, app, http.MethodPost, lessonPath+"/done", instructorToken, nil)
	if status != http.StatusOK {
		t.Fatalf("done: %d %v", status, done)
	}
	if p := done["package"].(map[string]interface{}); p["used_hours"] != 2.0 {
		t.Fatalf("used hours = %v", p["used_hours"])
	}

	status, _ = call(t, app, http.MethodGet, pkgPath, "", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("missing token: %d", status)
	}
	outsiderToken, _ := signup(t, app, "Bruno Reis", "bruno@example.com", "student", 0)
	status, _ = call(t, app, http.MethodGet, pkgPath, outsiderToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("outsider reading package: %d", status)
	}
	status, _ = call(t, app, http.MethodGet, "/api/v1/packages/not-a-uuid", studentToken, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("bad id: %d", status)
	}
}

func TestMessagingAndAdminGuards(t *testing.T) {
	app := newTestApp(t)
	studentToken, _ := signup(t, app, "Ana Souza", "ana@example.com", "student", 0)
	instructorToken, instructorID := signup(t, app, "Carlos Lima", "carlos@example.com", "instructor", 100)

	_, pkg := call(t, app, http.MethodPost, "/api/v1/packages", studentToken, fiber.Map{"instructor_id": instructorID, "hours": 5})
	msgPath := "/api/v1/packages/" + pkg["id"].(string) + "/messages"

	status, msg := call(t, app, http.MethodPost, msgPath, studentToken, fiber.Map{"content": "Can we start Monday?"})
	if status != http.StatusCreated {
		t.Fatalf("send: %d %v", status, msg)
	}
	status, unread := call(t, app, http.MethodGet, "/api/v1/messages/unread", instructorToken, nil)
	if status != http.StatusOK || unread["unread"] != 1.0 {
		t.Fatalf("unread: %d %v", status, unread)
	}
	status, marked := call(t, app, http.MethodPost, msgPath+"/read", instructorToken, nil)
	if status != http.StatusOK || marked["marked"] != 1.0 {
		t.Fatalf("read: %d %v", status, marked)
	}

	status, _ = call(t, app, http.MethodGet, "/api/v1/admin/users", studentToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("student on admin route: %d", status)
	}
}
