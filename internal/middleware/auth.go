package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/botica/internal/config"
	"github.com/example/botica/internal/utils"
)

// Context keys for the authenticated user. Exported so the websocket
// handler, which sees conn.Locals rather than fiber.Ctx, can read them too.
const (
	UserContextKey    = "currentUserID"
	CourierContextKey = "currentUserIsCourier"
)

// AuthMiddleware validates JWT bearer tokens and loads the authenticated
// user into the request context.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		userID, isCourier, err := utils.ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(UserContextKey, userID)
		c.Locals(CourierContextKey, isCourier)
		return c.Next()
	}
}

// CourierOnly rejects requests from users without the courier role. It must
// run after AuthMiddleware.
func CourierOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if is, ok := c.Locals(CourierContextKey).(bool); !ok || !is {
			return fiber.NewError(fiber.StatusForbidden, "courier access required")
		}
		return c.Next()
	}
}

// GetCurrentUserID extracts the authenticated user ID from context.
func GetCurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	value := c.Locals(UserContextKey)
	if value == nil {
		return uuid.Nil, false
	}

	if id, ok := value.(uuid.UUID); ok {
		return id, true
	}

	return uuid.Nil, false
}
