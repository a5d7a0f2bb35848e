package memoryRepo

import (
	"context"
	"fmt"
	"sync"

	"marketplace/database"
	"marketplace/models"
)

// NotificationRepo is an in-process NotificationRepository.
type NotificationRepo struct {
	mu    sync.RWMutex
	items []models.Notification
}

func NewNotificationRepo() *NotificationRepo {
	return &NotificationRepo{}
}

func (r *NotificationRepo) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if n.ID != "" && existing.ID == n.ID {
			return fmt.Errorf("notification %s: %w", n.ID, database.ErrDuplicate)
		}
	}
	r.items = append(r.items, *n)
	return nil
}

func (r *NotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	out := []models.Notification{}
	for i := len(r.items) - 1; i >= 0 && len(out) < limit; i-- {
		n := r.items[i]
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *NotificationRepo) MarkRead(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items[i].Read = true
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", id, database.ErrNotFound)
}

// DeviceRepo is an in-process DeviceRepository.
type DeviceRepo struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewDeviceRepo() *DeviceRepo {
	return &DeviceRepo{tokens: map[string]string{}}
}

func (r *DeviceRepo) SetFCMToken(_ context.Context, userID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[userID] = token
	return nil
}

func (r *DeviceRepo) GetFCMToken(_ context.Context, userID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[userID]
	if !ok || token == "" {
		return "", fmt.Errorf("device for %s: %w", userID, database.ErrNotFound)
	}
	return token, nil
}
