package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yourname/smartcoach/internal"
	"github.com/yourname/smartcoach/internal/response"
)

// UserKey is the gin context key holding the authenticated *internal.User.
const UserKey = "user"

func AuthMiddleware(provider Provider, logger internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			user, err := provider.ValidateToken(c.Request.Context(), token)
			if err == nil {
				c.Set(UserKey, user)
				c.Next()
				return
			}
			if !errors.Is(err, ErrInvalidToken) {
				logger.Errorf("[request_id=%s] token validation failed: %v", c.GetString("request_id"), err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, response.InternalError("Token validation failed"))
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized("Unauthorized"))
	}
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) *internal.User {
	return c.MustGet(UserKey).(*internal.User)
}
