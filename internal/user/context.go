package user

import (
	"errors"

	"auth_service/internal/auth"

	"github.com/gin-gonic/gin"
)

const ContextKey = "currentUser"

var errNoCurrentUser = errors.New("user not found in context")

// SetCurrentUser attaches an authenticated user to the request.
func SetCurrentUser(c *gin.Context, u *User) {
	c.Set(ContextKey, u)
	c.Set(auth.UserIDKey, u.ID)
}

// CurrentUser returns the user attached by the auth middleware.
func CurrentUser(c *gin.Context) (*User, error) {
	value, exists := c.Get(ContextKey)
	if !exists {
		return nil, errNoCurrentUser
	}

	u, ok := value.(*User)
	if !ok || u == nil {
		return nil, errNoCurrentUser
	}
	return u, nil
}
