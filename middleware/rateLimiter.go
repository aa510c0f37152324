package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// TenantRateLimiter keeps one token bucket per tenant.
type TenantRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	logger   *zap.Logger
}

// NewTenantRateLimiter allows perMinute requests per tenant with a burst of the same size.
func NewTenantRateLimiter(perMinute int, logger *zap.Logger) *TenantRateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenantRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		logger:   logger,
	}
}

func (l *TenantRateLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	return limiter
}

// Allow reports whether the tenant may make another request now.
func (l *TenantRateLimiter) Allow(key string) bool {
	return l.limiterFor(key).Allow()
}

// Handler must run after ProtectedRoute.
func (l *TenantRateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		if payload, ok := CurrentUser(c); ok {
			key = payload.TenantID.String()
		}

		if !l.Allow(key) {
			l.logger.Warn("Rate limit exceeded", zap.String("key", key), zap.String("path", c.Path()))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many requests, please try again later",
			})
		}
		return c.Next()
	}
}
