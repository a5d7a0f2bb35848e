package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"marketplace/models"

	"github.com/hibiken/asynq"
)

const (
	TypeDeliverNotification = "notification:deliver"
	TypeMatchFanout         = "match:fanout"

	QueueNotifications = "notifications"
	QueueMatching      = "matching"
)

// MatchFanoutPayload names the request whose candidates should be notified.
type MatchFanoutPayload struct {
	RequestID string `json:"request_id"`
}

// NewDeliverTask wraps a notification. The notification id doubles as the
// task id so a retried enqueue does not deliver twice.
func NewDeliverTask(n models.Notification) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeDeliverNotification, b)
	opts := []asynq.Option{
		asynq.Queue(QueueNotifications),
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
		asynq.Retention(24 * time.Hour),
	}
	if n.ID != "" {
		opts = append(opts, asynq.TaskID("notify:"+n.ID))
	}
	return task, opts, nil
}

func NewMatchFanoutTask(requestID string) (*asynq.Task, []asynq.Option, error) {
	if requestID == "" {
		return nil, nil, fmt.Errorf("match fanout: empty request id")
	}
	b, err := json.Marshal(MatchFanoutPayload{RequestID: requestID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeMatchFanout, b)
	opts := []asynq.Option{
		asynq.Queue(QueueMatching),
		asynq.MaxRetry(3),
		asynq.Timeout(5 * time.Minute),
		asynq.TaskID("fanout:" + requestID),
	}
	return task, opts, nil
}

func ParseDeliverTask(t *asynq.Task) (models.Notification, error) {
	var n models.Notification
	if err := json.Unmarshal(t.Payload(), &n); err != nil {
		return n, fmt.Errorf("invalid %s payload: %w", TypeDeliverNotification, err)
	}
	return n, nil
}

func ParseMatchFanoutTask(t *asynq.Task) (MatchFanoutPayload, error) {
	var p MatchFanoutPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid %s payload: %w", TypeMatchFanout, err)
	}
	if p.RequestID == "" {
		return p, fmt.Errorf("invalid %s payload: missing request_id", TypeMatchFanout)
	}
	return p, nil
}
