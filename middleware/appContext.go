package middleware

import (
	"context"

	"book-inventory-backend/token"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AppContext bundles all dependencies
type AppContext struct {
	PasetoMaker token.Maker
	Ctx         context.Context
	RedisClient *redis.Client
	Logger      *zap.Logger
}

func (a *AppContext) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}
