package config

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// InitRedisServer connects to redis at addr and checks it answers.
func InitRedisServer(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "",
		DB:       0,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis at %s is unreachable: %w", addr, err)
	}

	return client, nil
}
