// Package cache owns the Redis connection backing server-side sessions.
// It supports both embedded Redis (miniredis) and an external Redis server.
package cache

import (
	"context"
	"fmt"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/alnoor-academy/school-cms/logger"
)

// Cache holds one Redis client. When no address is configured an embedded
// miniredis instance is started so a single binary still deploys with no
// external services.
type Cache struct {
	client    *redis.Client
	miniRedis *miniredis.Miniredis
}

// Connect connects to the Redis server at addr, or starts an embedded
// instance when addr is empty.
func Connect(addr, password string) (*Cache, error) {
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("failed to start embedded Redis: %w", err)
		}
		logger.Info("Embedded Redis started on", mr.Addr())
		return &Cache{
			client:    redis.NewClient(&redis.Options{Addr: mr.Addr()}),
			miniRedis: mr,
		}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	logger.Info("Connected to external Redis at", addr)
	return &Cache{client: client}, nil
}

// Client returns the underlying Redis client.
func (c *Cache) Client() *redis.Client {
	return c.client
}

// Close closes the client and stops the embedded server if one is running.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	var err error
	if c.client != nil {
		err = c.client.Close()
	}
	if c.miniRedis != nil {
		c.miniRedis.Close()
	}
	return err
}
