package middleware

import (
	"strings"

	"book-inventory-backend/token"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const userLocalsKey = "user"

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return c.Cookies("access_token")
}

func unauthorized(c *fiber.Ctx, reason string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "Unauthorized",
		"error":   reason,
	})
}

// ProtectedRoute verifies the access token (Authorization header or
// access_token cookie) and requires an active tenant on it.
func ProtectedRoute(ctx *AppContext) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := bearerToken(c)
		if accessToken == "" {
			return unauthorized(c, "Authentication required")
		}

		payload, err := ctx.PasetoMaker.VerifyToken(accessToken)
		if err != nil {
			// Log invalid access token internally, but don't expose details to client
			ctx.logger().Debug("Invalid access token encountered", zap.Error(err))
			return unauthorized(c, "Session expired or invalid. Please log in again.")
		}

		if payload.TenantID == uuid.Nil {
			ctx.logger().Debug("Token carries no active tenant", zap.String("user_id", payload.UserID.String()))
			return unauthorized(c, "No active store selected")
		}

		c.Locals(userLocalsKey, payload)
		return c.Next()
	}
}

// CurrentUser returns the payload stored by ProtectedRoute.
func CurrentUser(c *fiber.Ctx) (*token.Payload, bool) {
	payload, ok := c.Locals(userLocalsKey).(*token.Payload)
	if !ok || payload == nil {
		return nil, false
	}
	return payload, true
}
