package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	identityHeader = "X-User-ID"
	localsUserKey  = "user_id"
)

// Identity copies the opaque caller id from the X-User-ID header into
// the request locals. Empty ids pass through; the usecases reject them
// on operations that need an identity.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(localsUserKey, strings.TrimSpace(c.Get(identityHeader)))
		return c.Next()
	}
}

// UserID returns the caller id stored by Identity, or "".
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localsUserKey).(string)
	return id
}
