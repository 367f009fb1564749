// Package redis implements cache.Cache on a Redis backend.
package redis

import (
	"context"
	"fmt"
	"time"

	rdb "github.com/redis/go-redis/v9"

	"github.com/talentlink/talentlink/internal/cache"
)

// Client is a Redis-backed byte cache. Operations use a short internal
// timeout; a Redis outage degrades into cache misses rather than errors.
type Client struct {
	client     *rdb.Client
	prefix     string
	defaultTTL time.Duration
}

const opTimeout = 2 * time.Second

// New creates a Redis cache client and verifies connectivity.
func New(addr string, db int, prefix string, defaultTTL time.Duration) (*Client, error) {
	if defaultTTL <= 0 {
		defaultTTL = time.Minute
	}
	c := rdb.NewClient(&rdb.Options{Addr: addr, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: redis ping failed: %w", err)
	}

	return &Client{client: c, prefix: prefix, defaultTTL: defaultTTL}, nil
}

var _ cache.Cache = (*Client)(nil)

func (c *Client) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

func (c *Client) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	b, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (c *Client) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_ = c.client.Set(ctx, c.key(key), value, ttl).Err()
}

func (c *Client) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_ = c.client.Del(ctx, c.key(key)).Err()
}

// Raw exposes the underlying go-redis client for components that need
// Redis primitives beyond byte caching, such as rate limiting.
func (c *Client) Raw() *rdb.Client {
	return c.client
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.client.Close()
}
