package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ResponseCache caches JSON responses in redis. A nil client disables it.
type ResponseCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewResponseCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *ResponseCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResponseCache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *ResponseCache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// GenerateKey builds "<resourceType>:<sha256 of the sorted query>".
func GenerateKey(resourceType string, filters map[string]string, page, pageSize int) string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var query strings.Builder
	fmt.Fprintf(&query, "resource=%s&page=%d&page_size=%d", resourceType, page, pageSize)
	for _, k := range keys {
		fmt.Fprintf(&query, "&%s=%s", k, filters[k])
	}

	hash := sha256.Sum256([]byte(query.String()))
	return fmt.Sprintf("%s:%s", resourceType, hex.EncodeToString(hash[:]))
}

// GetJSON reports whether key was found and decoded into dest.
func (c *ResponseCache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if !c.Enabled() {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("Cache entry is corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *ResponseCache) SetJSON(ctx context.Context, key string, value interface{}) {
	if !c.Enabled() {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateCache will invalidate all cached keys for the given resource type
func (c *ResponseCache) InvalidateCache(ctx context.Context, resourceType string) error {
	if !c.Enabled() {
		return nil
	}
	// Use SCAN instead of KEYS for better performance in production
	pattern := fmt.Sprintf("%s:*", resourceType)
	iter := c.rdb.Scan(ctx, 0, pattern, 0).Iterator()

	for iter.Next(ctx) {
		key := iter.Val()
		if err := c.rdb.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to delete key %s: %v", key, err)
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("error during SCAN iteration: %v", err)
	}
	return nil
}

// InvalidateCacheAsync invalidates the cache for a given resource type asynchronously
func (c *ResponseCache) InvalidateCacheAsync(resourceType string) {
	if !c.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.InvalidateCache(ctx, resourceType); err != nil {
			// Log the error, but don't block the process
			c.logger.Error("Cache invalidation failed",
				zap.String("resource_type", resourceType),
				zap.Error(err))
		}
	}()
}
