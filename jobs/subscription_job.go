package jobs

import (
	"context"

	"go.uber.org/zap"
)

// SubscriptionExpirer deactivates subscriptions past their expiry.
type SubscriptionExpirer interface {
	ExpireDue(ctx context.Context) (int64, error)
}

func ExpireSubscriptions(ctx context.Context, subs SubscriptionExpirer, log *zap.Logger) {
	if _, err := subs.ExpireDue(ctx); err != nil {
		log.Error("subscription expiry failed", zap.Error(err))
	}
}
