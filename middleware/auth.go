package middleware

import (
	"net/http"
	"strings"

	"marketplace/models"
	"marketplace/utils"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// JWTAuth validates the bearer token and stores the caller's Principal in
// the context. Identity is issued elsewhere; this only verifies it.
func JWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		p, err := utils.ParsePrincipal(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set(principalKey, p)
		c.Set("userID", p.ID)
		c.Next()
	}
}

// CurrentPrincipal returns the caller set by JWTAuth.
func CurrentPrincipal(c *gin.Context) (models.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok && p.ID != ""
}

// RequireRole rejects callers whose role is not one of roles. Must run after JWTAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "This action requires role " + strings.Join(roles, " or "),
			"code":  string(utils.KindForbidden),
		})
	}
}
