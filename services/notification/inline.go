package notification

import (
	"context"
	"sync"
	"time"

	"marketplace/models"

	"go.uber.org/zap"
)

const detachedTimeout = 2 * time.Minute

// AsyncSink runs another sink on a goroutine detached from the caller's
// cancellation. Used when no queue is configured.
type AsyncSink struct {
	next Sink
	log  *zap.Logger
	wg   sync.WaitGroup
}

func NewAsyncSink(next Sink, log *zap.Logger) *AsyncSink {
	return &AsyncSink{next: next, log: log}
}

func (s *AsyncSink) Notify(ctx context.Context, n models.Notification) error {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), detachedTimeout)
		defer cancel()
		if err := s.next.Notify(ctx, n); err != nil {
			DeliveryFailures.WithLabelValues(n.Type).Inc()
			s.log.Warn("async notification failed", zap.String("user_id", n.UserID), zap.Error(err))
		}
	}()
	return nil
}

// Wait blocks until in-flight deliveries finish.
func (s *AsyncSink) Wait() { s.wg.Wait() }

// FanoutFunc scores and notifies the candidates of one request.
type FanoutFunc func(ctx context.Context, requestID string) error

// InlineDispatcher runs the fan-out on a goroutine in this process.
type InlineDispatcher struct {
	run FanoutFunc
	log *zap.Logger
	wg  sync.WaitGroup
}

func NewInlineDispatcher(run FanoutFunc, log *zap.Logger) *InlineDispatcher {
	return &InlineDispatcher{run: run, log: log}
}

func (d *InlineDispatcher) DispatchMatch(ctx context.Context, requestID string) error {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), detachedTimeout)
		defer cancel()
		if err := d.run(ctx, requestID); err != nil {
			d.log.Warn("match fanout failed", zap.String("request_id", requestID), zap.Error(err))
		}
	}()
	return nil
}

func (d *InlineDispatcher) Wait() { d.wg.Wait() }
