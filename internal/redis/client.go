package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Client wraps the Redis client backing the hosted key-value store. A single
// shared client is used across the application to reuse connection pooling.
type Client struct {
	*redis.Client
}

// NewClient creates a Redis client from the given URL and verifies the
// connection so the server fails fast when Redis is unreachable.
// URL format: redis://[:password@]host:port[/db]
func NewClient(ctx context.Context, redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Client{Client: client}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.Client.Close()
}
