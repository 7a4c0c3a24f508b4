package services

import (
	"context"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventPackageRequested EventKind = "package.requested"
	EventPackageConfirmed EventKind = "package.confirmed"
	EventPackageCancelled EventKind = "package.cancelled"
	EventPackageProgress  EventKind = "package.progress"
	EventPackageCompleted EventKind = "package.completed"
	EventLessonProposed   EventKind = "lesson.proposed"
	EventLessonConfirmed  EventKind = "lesson.confirmed"
	EventLessonCancelled  EventKind = "lesson.cancelled"
	EventLessonDone       EventKind = "lesson.done"
	EventMessageSent      EventKind = "message.sent"
	EventReviewSubmitted  EventKind = "review.submitted"
)

// Event is published after a state change has been committed.
type Event struct {
	Kind         EventKind  `json:"kind"`
	PackageID    uuid.UUID  `json:"package_id"`
	StudentID    uuid.UUID  `json:"student_id"`
	InstructorID uuid.UUID  `json:"instructor_id"`
	LessonID     *uuid.UUID `json:"lesson_id,omitempty"`
	// ActorID is the user who caused the event; zero for system events.
	ActorID uuid.UUID `json:"actor_id"`
	Data    any       `json:"data,omitempty"`
}

// Recipients returns the package parties other than the actor.
func (e Event) Recipients() []uuid.UUID {
	var out []uuid.UUID
	for _, id := range []uuid.UUID{e.StudentID, e.InstructorID} {
		if id != uuid.Nil && id != e.ActorID {
			out = append(out, id)
		}
	}
	return out
}

// Publisher delivers events on a best-effort basis. Implementations must not
// block the caller on slow consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Publishers fans an event out to each publisher in order.
type Publishers []Publisher

func (ps Publishers) Publish(ctx context.Context, e Event) {
	for _, p := range ps {
		if p != nil {
			p.Publish(ctx, e)
		}
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}
