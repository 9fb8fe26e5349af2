package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/AI-zik/shoe-store-backend/services/common/auth"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const (
	UserKey = "user_id"
	RoleKey = "user_role"

	RoleAdmin = "admin"
)

// AuthMiddleware accepts either an access token in the Authorization header or the
// X-User-ID/X-User-Role headers set by the API gateway after it validated the token.
func AuthMiddleware(validator *auth.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			rawID string
			role  string
		)

		if header := c.GetHeader("Authorization"); header != "" {
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || !validator.Enabled() {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
				return
			}
			claims, err := validator.ParseAndValidateToken(token, "access")
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				return
			}
			rawID = subject(claims)
			role, _ = claims["role"].(string)
		} else {
			rawID = c.GetHeader("X-User-ID")
			role = c.GetHeader("X-User-Role")
		}

		userID, err := strconv.ParseUint(rawID, 10, 64)
		if err != nil || userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(UserKey, uint(userID))
		c.Set(RoleKey, role)
		c.Next()
	}
}

// AdminOnly must run after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(RoleKey) != RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

func GetUserID(c *gin.Context) uint {
	if val, exists := c.Get(UserKey); exists {
		if id, ok := val.(uint); ok {
			return id
		}
	}
	return 0
}

func subject(claims jwt.MapClaims) string {
	switch v := claims["sub"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	switch v := claims["user_id"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}
