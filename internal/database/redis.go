package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"filesmanager/internal/config"
)

var redisNew = redis.NewClient

// NewRedis creates a Redis client and verifies connectivity with a short timeout.
// Context deadlines are honoured so that callers can bound every command.
func NewRedis(c config.RedisConfig) (*redis.Client, error) {
	if c.Addr == "" {
		return nil, fmt.Errorf("invalid redis config: addr is required")
	}

	opts := &redis.Options{
		Addr:                  c.Addr,
		Password:              c.Password,
		DB:                    c.DB,
		ContextTimeoutEnabled: true,
	}
	if c.DialTimeoutSec > 0 {
		opts.DialTimeout = time.Duration(c.DialTimeoutSec) * time.Second
	}

	client := redisNew(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}
