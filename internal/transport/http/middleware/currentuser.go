package middleware

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/monikerhq/moniker/internal/domain"
	"github.com/monikerhq/moniker/internal/repository"
)

const ctxUserKey = "currentUser"

// CurrentUser runs after Session. It resolves the session's user ID to
// a full user record. A session pointing at a deleted user is treated
// as anonymous rather than failing the request.
func CurrentUser(users repository.UserRepository, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess != nil && sess.LoggedIn() {
			user, err := users.FindByID(c.Request.Context(), sess.UserID())
			switch {
			case err == nil:
				c.Set(ctxUserKey, user)
			case !errors.Is(err, domain.ErrUserNotFound):
				logger.ErrorContext(c.Request.Context(), "resolve current user", "error", err)
			}
		}
		c.Next()
	}
}

// UserFrom returns the authenticated user, or nil for anonymous
// visitors.
func UserFrom(c *gin.Context) *domain.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}
