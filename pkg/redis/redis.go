// Package redis bootstraps the Redis client the daily throttle store runs on.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrInvalidConnectionURL = errors.New("failed to parse redis connection string")
	ErrNotReady             = errors.New("redis is not ready")
	ErrHealthcheckFailed    = errors.New("redis healthcheck failed")
)

// Config holds the connection settings, populated from the environment.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL,required" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}

// Connect establishes a connection, retrying per the config before giving up.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opt, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidConnectionURL, err)
	}

	for range cfg.RetryAttempts {
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, ErrNotReady
}

// Healthcheck returns a probe suitable for readiness endpoints.
func Healthcheck(client *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
