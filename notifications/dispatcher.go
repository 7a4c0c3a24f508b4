package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/anjiri1684/drive_tutor/services"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserLookup interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Dispatcher turns package and lesson events into emails for the parties.
type Dispatcher struct {
	mailer services.Mailer
	users  UserLookup
	log    *zap.Logger
	async  bool
}

func NewDispatcher(mailer services.Mailer, users UserLookup, log *zap.Logger) *Dispatcher {
	return &Dispatcher{mailer: mailer, users: users, log: log, async: true}
}

type email struct {
	to      uuid.UUID
	subject string
	body    string
}

func (d *Dispatcher) Publish(ctx context.Context, e services.Event) {
	if d.mailer == nil {
		return
	}
	mails := compose(e)
	if len(mails) == 0 {
		return
	}
	send := func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		for _, m := range mails {
			d.deliver(ctx, m)
		}
	}
	if d.async {
		go send()
		return
	}
	send()
}

func (d *Dispatcher) deliver(ctx context.Context, m email) {
	user, err := d.users.GetUser(ctx, m.to)
	if err != nil {
		d.log.Warn("email recipient lookup failed", zap.String("user_id", m.to.String()), zap.Error(err))
		return
	}
	if err := d.mailer.Send(ctx, user.FullName, user.Email, m.subject, m.body); err != nil {
		d.log.Warn("email not sent", zap.String("to", user.Email), zap.String("subject", m.subject), zap.Error(err))
	}
}

func compose(e services.Event) []email {
	link := fmt.Sprintf("package %s", e.PackageID)
	switch e.Kind {
	case services.EventPackageRequested:
		return []email{{
			to:      e.InstructorID,
			subject: "New lesson package request",
			body:    fmt.Sprintf("<h1>New request</h1><p>A student requested %s. Confirm or decline it in your dashboard.</p>", link),
		}}
	case services.EventPackageConfirmed:
		return []email{{
			to:      e.StudentID,
			subject: "Your package was confirmed",
			body:    fmt.Sprintf("<h1>Package confirmed</h1><p>Your instructor confirmed %s. You can now schedule lessons.</p>", link),
		}}
	case services.EventPackageCancelled:
		var out []email
		for _, id := range e.Recipients() {
			out = append(out, email{
				to:      id,
				subject: "Package cancelled",
				body:    fmt.Sprintf("<h1>Package cancelled</h1><p>%s was cancelled.</p>", link),
			})
		}
		return out
	case services.EventLessonProposed:
		var out []email
		for _, id := range e.Recipients() {
			out = append(out, email{
				to:      id,
				subject: "New lesson proposal",
				body:    fmt.Sprintf("<h1>Lesson proposal</h1><p>A new lesson was proposed for %s. Confirm or refuse it.</p>", link),
			})
		}
		return out
	case services.EventPackageCompleted:
		return []email{{
			to:      e.StudentID,
			subject: "Package completed, rate your instructor",
			body:    fmt.Sprintf("<h1>Congratulations!</h1><p>You completed every hour of %s. Leave a review for your instructor.</p>", link),
		}}
	}
	return nil
}
