package middleware

import (
	"github.com/gofiber/fiber/v2"

	"filesmanager/internal/session"
)

const (
	// TokenHeader carries the session token on authorized requests.
	TokenHeader = "X-Token"
	// UserIDLocalKey is the key under which Auth stores the caller's user id.
	UserIDLocalKey = "user_id"
)

// Auth resolves the X-Token header against store and rejects the request with
// 401 when it does not map to a live session.
func Auth(store session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := store.Resolve(c.UserContext(), c.Get(TokenHeader))
		if !ok {
			return fiber.ErrUnauthorized
		}
		c.Locals(UserIDLocalKey, userID)
		return c.Next()
	}
}

// UserID returns the id stored by Auth.
func UserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(UserIDLocalKey).(int64)
	return id
}
