package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	reminderSpec     = "*/5 * * * *"
	subscriptionSpec = "@hourly"
)

// Schedule registers the periodic jobs on c. Jobs run with ctx so they stop
// issuing store calls once the server shuts down.
func Schedule(ctx context.Context, c *cron.Cron, reminders *LessonReminders, subs SubscriptionExpirer, log *zap.Logger) error {
	if _, err := c.AddFunc(reminderSpec, func() {
		if _, err := reminders.Run(ctx); err != nil {
			log.Error("lesson reminder job failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}
	if _, err := c.AddFunc(subscriptionSpec, func() {
		ExpireSubscriptions(ctx, subs, log)
	}); err != nil {
		return err
	}
	log.Info("cron jobs scheduled",
		zap.String("reminders", reminderSpec),
		zap.String("subscriptions", subscriptionSpec),
	)
	return nil
}
