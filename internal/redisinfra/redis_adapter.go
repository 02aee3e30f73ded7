// Package redisinfra implements the cache.Client port on top of
// github.com/redis/go-redis/v9.
//
// The adapter is a thin translation layer: redis.Nil is folded into the
// (value, found) convention of the port, and everything else passes through
// unmodified, including the client's own timeout behavior. No retry or
// circuit-breaking is layered on top; the cache-aside services already treat
// every cache failure as recoverable.
package redisinfra

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stDean/prod-ecom-backend/cache"
)

// Config holds the connection settings for the redis-backed cache client.
type Config struct {
	// Addr is the host:port of the redis server. Required.
	Addr string

	// Password authenticates the connection. Empty means no auth.
	Password string

	// DB selects the redis logical database. Must not be negative.
	DB int

	// DialTimeout bounds connection establishment. Zero uses the go-redis
	// default.
	DialTimeout time.Duration

	// ReadTimeout and WriteTimeout bound individual commands. Zero uses the
	// go-redis defaults.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// PingTimeout bounds the connection probe performed by NewClient.
	PingTimeout time.Duration
}

// DefaultConfig returns a Config pointing at a local redis with a short
// connection probe.
func DefaultConfig() Config {
	return Config{
		Addr:        "localhost:6379",
		DB:          0,
		PingTimeout: 5 * time.Second,
	}
}

// Validate checks whether the configuration values are usable.
func (c Config) Validate() error {
	if c.Addr == "" {
		return &ConfigError{Field: "Addr", Message: "must not be empty"}
	}
	if c.DB < 0 {
		return &ConfigError{Field: "DB", Message: "must not be negative"}
	}
	if c.PingTimeout < 0 {
		return &ConfigError{Field: "PingTimeout", Message: "must not be negative"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// redisClient adapts a go-redis client to the cache.Client port.
type redisClient struct {
	rdb *redis.Client
}

var _ cache.Client = (*redisClient)(nil)

// NewClient validates the configuration, dials redis and verifies the
// connection with a PING before handing the client out.
func NewClient(cfg Config) (cache.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingTimeout := cfg.PingTimeout
	if pingTimeout == 0 {
		pingTimeout = DefaultConfig().PingTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &redisClient{rdb: rdb}, nil
}

// Wrap adapts an existing go-redis client without dialing. The caller keeps
// ownership of the connection lifecycle in tests and embedded setups.
func Wrap(rdb *redis.Client) cache.Client {
	return &redisClient{rdb: rdb}
}

func (c *redisClient) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *redisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *redisClient) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *redisClient) Scan(ctx context.Context, cursor uint64, pattern string, count int64) ([]string, uint64, error) {
	keys, next, err := c.rdb.Scan(ctx, cursor, pattern, count).Result()
	if err != nil {
		return nil, 0, err
	}
	return keys, next, nil
}

func (c *redisClient) HGet(ctx context.Context, key, field string) (string, bool, error) {
	val, err := c.rdb.HGet(ctx, key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *redisClient) HSet(ctx context.Context, key, field, value string) error {
	return c.rdb.HSet(ctx, key, field, value).Err()
}

func (c *redisClient) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return c.rdb.HGetAll(ctx, key).Result()
}

func (c *redisClient) HDel(ctx context.Context, key string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return c.rdb.HDel(ctx, key, fields...).Err()
}

func (c *redisClient) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.rdb.Expire(ctx, key, ttl).Err()
}

func (c *redisClient) Close() error {
	return c.rdb.Close()
}
