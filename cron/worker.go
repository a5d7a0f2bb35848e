package cron

import (
	"context"
	"fmt"
	"time"

	"marketplace/services/notification"
	"marketplace/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Worker consumes notification delivery and match fan-out tasks.
type Worker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

func NewWorker(redisOpts asynq.RedisClientOpt, sink notification.Sink, fanout notification.FanoutFunc, logger *zap.Logger) *Worker {
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				tasks.QueueNotifications: 6,
				tasks.QueueMatching:      3,
				"default":                1,
			},
			Logger: logger.Sugar(),
		},
	)
	return &Worker{srv: srv, mux: NewMux(sink, fanout, logger), logger: logger}
}

// NewMux registers the task handlers.
func NewMux(sink notification.Sink, fanout notification.FanoutFunc, logger *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeDeliverNotification, handleDeliverTask(sink, logger))
	mux.HandleFunc(tasks.TypeMatchFanout, handleMatchFanoutTask(fanout, logger))
	return mux
}

// Start runs the worker in the background, retrying startup with backoff.
func (w *Worker) Start() {
	go func() {
		w.logger.Info("starting task worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := w.srv.Start(w.mux)
			if err == nil {
				return
			}
			w.logger.Error("failed to start task worker",
				zap.Int("attempt", attempts),
				zap.Int("max_attempts", maxAttempts),
				zap.Error(err),
			)
			if attempts == maxAttempts {
				w.logger.Error("task worker gave up; background delivery is disabled")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
}

func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}

func handleDeliverTask(sink notification.Sink, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		n, err := tasks.ParseDeliverTask(task)
		if err != nil {
			logger.Error("dropping notification task", zap.Error(err))
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		if err := sink.Notify(ctx, n); err != nil {
			logger.Warn("notification delivery failed, will retry",
				zap.String("notification_id", n.ID),
				zap.String("user_id", n.UserID),
				zap.Error(err),
			)
			return err
		}
		return nil
	}
}

func handleMatchFanoutTask(fanout notification.FanoutFunc, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseMatchFanoutTask(task)
		if err != nil {
			logger.Error("dropping match fanout task", zap.Error(err))
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		if err := fanout(ctx, p.RequestID); err != nil {
			logger.Warn("match fanout failed, will retry", zap.String("request_id", p.RequestID), zap.Error(err))
			return err
		}
		return nil
	}
}
