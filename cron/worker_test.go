package cron

import (
	"context"
	"errors"
	"testing"

	"marketplace/models"
	"marketplace/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type recordingSink struct {
	got []models.Notification
	err error
}

func (s *recordingSink) Notify(_ context.Context, n models.Notification) error {
	s.got = append(s.got, n)
	return s.err
}

func TestDeliverTask(t *testing.T) {
	sink := &recordingSink{}
	mux := NewMux(sink, func(context.Context, string) error { return nil }, zap.NewNop())

	task, _, err := tasks.NewDeliverTask(models.Notification{ID: "n1", UserID: "u1", Type: models.NotifyNewProposal})
	if err != nil {
		t.Fatalf("NewDeliverTask: %v", err)
	}
	if err := mux.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("ProcessTask: %v", err)
	}
	if len(sink.got) != 1 || sink.got[0].ID != "n1" || sink.got[0].UserID != "u1" {
		t.Fatalf("delivered = %+v", sink.got)
	}

	sink.err = errors.New("mongo down")
	if err := mux.ProcessTask(context.Background(), task); err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("sink failure should be retried, got %v", err)
	}
}

func TestDeliverTask_BadPayloadSkipsRetry(t *testing.T) {
	mux := NewMux(&recordingSink{}, nil, zap.NewNop())
	err := mux.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeDeliverNotification, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("err = %v; want SkipRetry", err)
	}
}

func TestMatchFanoutTask(t *testing.T) {
	var ran []string
	mux := NewMux(&recordingSink{}, func(_ context.Context, id string) error {
		ran = append(ran, id)
		return nil
	}, zap.NewNop())

	task, _, err := tasks.NewMatchFanoutTask("req-9")
	if err != nil {
		t.Fatalf("NewMatchFanoutTask: %v", err)
	}
	if err := mux.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("ProcessTask: %v", err)
	}
	if len(ran) != 1 || ran[0] != "req-9" {
		t.Fatalf("fanout ran for %v", ran)
	}

	err = mux.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeMatchFanout, []byte(`{}`)))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("missing request id err = %v; want SkipRetry", err)
	}
}
