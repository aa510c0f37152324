package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestLogger writes one structured line per request.
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		}
		if payload, ok := CurrentUser(c); ok {
			fields = append(fields, zap.String("tenant_id", payload.TenantID.String()))
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
			logger.Error("Request failed", fields...)
			return err
		}
		logger.Info("Request handled", fields...)
		return nil
	}
}
