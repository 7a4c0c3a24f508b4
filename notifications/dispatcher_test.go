package notifications

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/anjiri1684/drive_tutor/services"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMailer) Send(_ context.Context, _, toEmail, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, toEmail+"|"+subject)
	return nil
}

type stubUsers map[uuid.UUID]models.User

func (s stubUsers) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, errors.New("missing")
	}
	return &u, nil
}

func TestDispatcher_PackageRequestedMailsInstructor(t *testing.T) {
	studentID, instructorID := uuid.New(), uuid.New()
	users := stubUsers{
		studentID:    {ID: studentID, FullName: "Ana", Email: "ana@example.com"},
		instructorID: {ID: instructorID, FullName: "Carlos", Email: "carlos@example.com"},
	}
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, users, zap.NewNop())
	d.async = false

	d.Publish(context.Background(), services.Event{
		Kind:         services.EventPackageRequested,
		PackageID:    uuid.New(),
		StudentID:    studentID,
		InstructorID: instructorID,
		ActorID:      studentID,
	})

	if len(mailer.sent) != 1 || mailer.sent[0] != "carlos@example.com|New lesson package request" {
		t.Fatalf("unexpected emails %v", mailer.sent)
	}
}

func TestDispatcher_CancelledSkipsActor(t *testing.T) {
	studentID, instructorID := uuid.New(), uuid.New()
	users := stubUsers{
		studentID:    {ID: studentID, Email: "ana@example.com"},
		instructorID: {ID: instructorID, Email: "carlos@example.com"},
	}
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, users, zap.NewNop())
	d.async = false

	d.Publish(context.Background(), services.Event{
		Kind:         services.EventPackageCancelled,
		StudentID:    studentID,
		InstructorID: instructorID,
		ActorID:      instructorID,
	})

	if len(mailer.sent) != 1 || mailer.sent[0] != "ana@example.com|Package cancelled" {
		t.Fatalf("unexpected emails %v", mailer.sent)
	}
}

func TestDispatcher_IgnoresChatEvents(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, stubUsers{}, zap.NewNop())
	d.async = false

	d.Publish(context.Background(), services.Event{Kind: services.EventMessageSent})

	if len(mailer.sent) != 0 {
		t.Fatalf("expected no emails, got %v", mailer.sent)
	}
}

func TestBrevoService_Send(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api-key")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := NewBrevoService("key-123", "no-reply@example.com", "Drive Tutor", zap.NewNop())
	s.Endpoint = srv.URL

	if err := s.Send(context.Background(), "Ana", "ana@example.com", "Hi", "<p>hi</p>"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if gotKey != "key-123" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
}

func TestBrevoService_RejectsBadRecipient(t *testing.T) {
	s := NewBrevoService("key", "no-reply@example.com", "", zap.NewNop())

	if err := s.Send(context.Background(), "", "not-an-email", "Hi", ""); err == nil {
		t.Fatal("expected error for invalid recipient")
	}
}

func TestNewBrevoService_Unconfigured(t *testing.T) {
	if s := NewBrevoService("", "", "", zap.NewNop()); s != nil {
		t.Fatal("expected nil service without api key")
	}
}
