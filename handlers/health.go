package handlers

import (
	"net/http"

	"marketplace/utils"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	Monitor *utils.HealthMonitor
}

func (h *HealthHandler) Health(c *gin.Context) {
	status := h.Monitor.Status()
	if status.CheckedAt.IsZero() {
		status = h.Monitor.Check(c.Request.Context())
	}
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
