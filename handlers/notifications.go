package handlers

import (
	"context"
	"net/http"

	"marketplace/models"

	"github.com/gin-gonic/gin"
)

// InboxService is the notification inbox as seen by the HTTP layer.
type InboxService interface {
	List(ctx context.Context, p models.Principal, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, p models.Principal, id string) error
	RegisterDevice(ctx context.Context, p models.Principal, token string) error
}

type NotificationHandler struct {
	Inbox InboxService
}

func NewNotificationHandler(inbox InboxService) *NotificationHandler {
	return &NotificationHandler{Inbox: inbox}
}

func (h *NotificationHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	items, err := h.Inbox.List(c.Request.Context(), p, c.Query("unread") == "true", queryInt(c, "limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items, "count": len(items)})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.Inbox.MarkRead(c.Request.Context(), p, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *NotificationHandler) RegisterDevice(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body struct {
		FCMToken string `json:"fcm_token"`
	}
	if !bindJSON(c, &body) {
		return
	}
	if err := h.Inbox.RegisterDevice(c.Request.Context(), p, body.FCMToken); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "FCM token updated"})
}
