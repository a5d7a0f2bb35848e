package notification

import (
	"context"
	"errors"
	"fmt"

	"marketplace/models"
	"marketplace/services/tasks"

	"github.com/hibiken/asynq"
)

// Enqueuer is the subset of *asynq.Client used by the queue-backed sinks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueSink hands notifications to the worker through asynq.
type QueueSink struct {
	client Enqueuer
}

func NewQueueSink(client Enqueuer) *QueueSink {
	return &QueueSink{client: client}
}

func (s *QueueSink) Notify(ctx context.Context, n models.Notification) error {
	task, opts, err := tasks.NewDeliverTask(n)
	if err != nil {
		return fmt.Errorf("failed to build delivery task: %w", err)
	}
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}

// QueueMatchDispatcher schedules candidate fan-out on the worker.
type QueueMatchDispatcher struct {
	client Enqueuer
}

func NewQueueMatchDispatcher(client Enqueuer) *QueueMatchDispatcher {
	return &QueueMatchDispatcher{client: client}
}

func (d *QueueMatchDispatcher) DispatchMatch(ctx context.Context, requestID string) error {
	task, opts, err := tasks.NewMatchFanoutTask(requestID)
	if err != nil {
		return err
	}
	if _, err := d.client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("failed to enqueue match fanout: %w", err)
	}
	return nil
}
