package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yourname/sleepwell/internal"
	"github.com/yourname/sleepwell/internal/response"
)

// UserKey is the gin context key holding the authenticated *internal.User.
const UserKey = "user"

func AuthMiddleware(provider Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abort(c, internal.Unauthorized("No authentication token provided"))
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			abort(c, internal.Unauthorized("No authentication token provided"))
			return
		}

		user, err := provider.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(UserKey, user)
			c.Next()
		case errors.Is(err, ErrUserNotFound):
			abort(c, internal.Unauthorized("User not found"))
		case errors.Is(err, ErrInvalidToken):
			abort(c, internal.Unauthorized("Invalid or expired token"))
		default:
			abort(c, internal.Internal("Internal server error"))
		}
	}
}

func abort(c *gin.Context, e *internal.AppError) {
	c.AbortWithStatusJSON(e.Status, response.Error(e))
}

// CurrentUser returns the user set by AuthMiddleware.
func CurrentUser(c *gin.Context) *internal.User {
	return c.MustGet(UserKey).(*internal.User)
}
