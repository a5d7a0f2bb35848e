package notification

import (
	"context"
	"errors"
	"strings"

	"marketplace/database"
	"marketplace/database/repository"
	"marketplace/models"
	"marketplace/utils"
)

// Inbox serves a user's own notifications and device registration.
type Inbox struct {
	store   repository.NotificationRepository
	devices repository.DeviceRepository
}

func NewInbox(store repository.NotificationRepository, devices repository.DeviceRepository) *Inbox {
	return &Inbox{store: store, devices: devices}
}

func (i *Inbox) List(ctx context.Context, p models.Principal, unreadOnly bool, limit int) ([]models.Notification, error) {
	out, err := i.store.ListByUser(ctx, p.ID, unreadOnly, limit)
	if err != nil {
		return nil, utils.Internal("failed to list notifications", err)
	}
	return out, nil
}

func (i *Inbox) MarkRead(ctx context.Context, p models.Principal, id string) error {
	err := i.store.MarkRead(ctx, p.ID, id)
	if errors.Is(err, database.ErrNotFound) {
		return utils.NotFound("notification not found")
	}
	if err != nil {
		return utils.Internal("failed to update notification", err)
	}
	return nil
}

func (i *Inbox) RegisterDevice(ctx context.Context, p models.Principal, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return utils.Validation("fcm_token", "fcm_token is required")
	}
	if err := i.devices.SetFCMToken(ctx, p.ID, token); err != nil {
		return utils.Internal("failed to register device", err)
	}
	return nil
}
