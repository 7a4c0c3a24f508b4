package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxMessageLength = 2000

type ChatService struct {
	store  Store
	events Publisher
	log    *zap.Logger
	now    func() time.Time
}

func NewChatService(store Store, events Publisher, log *zap.Logger) *ChatService {
	if events == nil {
		events = nopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatService{store: store, events: events, log: log, now: time.Now}
}

// WithClock allows tests to override the clock used by the service.
func (s *ChatService) WithClock(fn func() time.Time) {
	s.now = fn
}

// Send stores a message from one package party to the other.
func (s *ChatService) Send(ctx context.Context, actor Actor, packageID uuid.UUID, content string) (*models.Message, error) {
	pkg, err := s.store.GetPackage(ctx, packageID)
	if err != nil {
		return nil, storeErr(err)
	}
	party, err := actor.partyOf(pkg)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if n := utf8.RuneCountInString(content); n == 0 || n > maxMessageLength {
		return nil, invalid("message must have between 1 and %d characters", maxMessageLength)
	}

	msg := &models.Message{
		ID:         uuid.New(),
		PackageID:  pkg.ID,
		SenderID:   actor.ID,
		SenderRole: party,
		Content:    content,
		CreatedAt:  s.now(),
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, storeErr(err)
	}

	s.events.Publish(ctx, Event{
		Kind:         EventMessageSent,
		PackageID:    pkg.ID,
		StudentID:    pkg.StudentID,
		InstructorID: pkg.InstructorID,
		ActorID:      actor.ID,
		Data:         msg,
	})
	return msg, nil
}

// List returns the package conversation, oldest first.
func (s *ChatService) List(ctx context.Context, actor Actor, packageID uuid.UUID) ([]models.Message, error) {
	pkg, err := s.store.GetPackage(ctx, packageID)
	if err != nil {
		return nil, storeErr(err)
	}
	if err := actor.canView(pkg); err != nil {
		return nil, err
	}
	msgs, err := s.store.ListMessages(ctx, pkg.ID)
	return msgs, storeErr(err)
}

// MarkRead flags the messages addressed to the actor as read.
func (s *ChatService) MarkRead(ctx context.Context, actor Actor, packageID uuid.UUID) (int64, error) {
	pkg, err := s.store.GetPackage(ctx, packageID)
	if err != nil {
		return 0, storeErr(err)
	}
	if _, err := actor.partyOf(pkg); err != nil {
		return 0, err
	}
	n, err := s.store.MarkMessagesRead(ctx, pkg.ID, actor.ID)
	return n, storeErr(err)
}

func (s *ChatService) UnreadCount(ctx context.Context, actor Actor) (int64, error) {
	n, err := s.store.CountUnread(ctx, actor.ID)
	return n, storeErr(err)
}
