package handlers

import (
	"net/http"
	"strconv"

	"marketplace/middleware"
	"marketplace/models"
	"marketplace/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves the request-scoped logger or falls back to the global one.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}

// principal returns the authenticated caller or writes a 401.
func principal(c *gin.Context) (models.Principal, bool) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return p, ok
}

func respondError(c *gin.Context, err error) {
	utils.RespondError(c, getLogger(c), err)
}

// bindJSON decodes the body or writes a validation error.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, utils.Validation("body", "invalid request body: "+err.Error()))
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}

func queryFloat(c *gin.Context, key string) float64 {
	f, _ := strconv.ParseFloat(c.Query(key), 64)
	return f
}
