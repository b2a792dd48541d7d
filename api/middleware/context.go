package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	contextUserIDKey   = "auth_user_id"
	contextRoleKey     = "auth_role"
	contextEmailKey    = "auth_email"
	contextUsernameKey = "auth_username"
)

func SetAuthContext(c echo.Context, userID uuid.UUID, role, email, username string) {
	c.Set(contextUserIDKey, userID)
	c.Set(contextRoleKey, role)
	c.Set(contextEmailKey, email)
	c.Set(contextUsernameKey, username)
}

func UserIDFromContext(c echo.Context) (uuid.UUID, bool) {
	value := c.Get(contextUserIDKey)
	userID, ok := value.(uuid.UUID)
	return userID, ok
}

func RoleFromContext(c echo.Context) (string, bool) {
	value := c.Get(contextRoleKey)
	role, ok := value.(string)
	return role, ok
}

func EmailFromContext(c echo.Context) (string, bool) {
	value := c.Get(contextEmailKey)
	email, ok := value.(string)
	return email, ok
}

func UsernameFromContext(c echo.Context) (string, bool) {
	value := c.Get(contextUsernameKey)
	username, ok := value.(string)
	return username, ok
}
