package notification

import (
	"context"
	"time"

	"marketplace/models"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Sink delivers a notification to its recipient.
type Sink interface {
	Notify(ctx context.Context, n models.Notification) error
}

// MatchDispatcher schedules scoring and notification of candidate
// freelancers for a newly created request.
type MatchDispatcher interface {
	DispatchMatch(ctx context.Context, requestID string) error
}

// DeliveryFailures counts notifications that could not be handed to a sink.
var DeliveryFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notification_delivery_failures_total",
		Help: "Notifications dropped because the sink returned an error.",
	},
	[]string{"type"},
)

// Deliver is the fire-and-forget call site for lifecycle events. Failures
// are logged and counted, never returned.
func Deliver(ctx context.Context, sink Sink, log *zap.Logger, n models.Notification) {
	if sink == nil || n.UserID == "" {
		return
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if err := sink.Notify(ctx, n); err != nil {
		DeliveryFailures.WithLabelValues(n.Type).Inc()
		log.Warn("notification delivery failed",
			zap.String("user_id", n.UserID),
			zap.String("type", n.Type),
			zap.Error(err),
		)
	}
}
