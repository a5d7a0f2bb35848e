package notification

import (
	"context"
	"errors"
	"fmt"

	"marketplace/database"
	"marketplace/database/repository"
	"marketplace/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// Pusher sends a push message to one device token.
type Pusher interface {
	Push(ctx context.Context, token string, n models.Notification) error
}

// FCMPusher sends pushes through Firebase Cloud Messaging.
type FCMPusher struct {
	client *messaging.Client
}

func NewFCMPusher(client *messaging.Client) *FCMPusher {
	return &FCMPusher{client: client}
}

func (p *FCMPusher) Push(ctx context.Context, token string, n models.Notification) error {
	data := map[string]string{"type": n.Type, "notification_id": n.ID}
	if n.Link != "" {
		data["link"] = n.Link
	}
	for k, v := range n.Data {
		data[k] = v
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Message,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}
	if _, err := p.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	return nil
}

// StoreSink persists the in-app notification and, when a pusher is
// configured and the user registered a device, sends a push.
type StoreSink struct {
	store   repository.NotificationRepository
	devices repository.DeviceRepository
	pusher  Pusher
	log     *zap.Logger
}

// NewStoreSink builds a StoreSink. pusher may be nil to disable push.
func NewStoreSink(
	store repository.NotificationRepository,
	devices repository.DeviceRepository,
	pusher Pusher,
	log *zap.Logger,
) (*StoreSink, error) {
	if store == nil || devices == nil || log == nil {
		return nil, fmt.Errorf("notification store initialization error: missing dependency")
	}
	return &StoreSink{store: store, devices: devices, pusher: pusher, log: log}, nil
}

// Notify returns an error only when the notification could not be stored.
// Push failures are logged since the in-app copy already exists.
func (s *StoreSink) Notify(ctx context.Context, n models.Notification) error {
	if err := s.store.Create(ctx, &n); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil
		}
		return err
	}
	if s.pusher == nil {
		return nil
	}

	token, err := s.devices.GetFCMToken(ctx, n.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.log.Warn("device lookup failed", zap.String("user_id", n.UserID), zap.Error(err))
		return nil
	}
	if err := s.pusher.Push(ctx, token, n); err != nil {
		s.log.Warn("push failed", zap.String("user_id", n.UserID), zap.String("type", n.Type), zap.Error(err))
	}
	return nil
}
