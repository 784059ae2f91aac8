// Package mongo bootstraps the document-store client the authoritative
// subscription and usage stores run on.
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var (
	ErrFailedToConnect   = errors.New("failed to connect to mongo")
	ErrHealthcheckFailed = errors.New("mongo healthcheck failed")
)

// Config holds the connection settings, populated from the environment.
type Config struct {
	ConnectionURL   string        `env:"MONGODB_URL,required"`
	Database        string        `env:"MONGODB_DATABASE" envDefault:"plateful"`
	ConnectTimeout  time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`
	MaxPoolSize     uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`
	MinPoolSize     uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"1"`
	MaxConnIdleTime time.Duration `env:"MONGODB_MAX_CONN_IDLE_TIME" envDefault:"300s"`
	RetryAttempts   int           `env:"MONGODB_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval   time.Duration `env:"MONGODB_RETRY_INTERVAL" envDefault:"5s"`
}

// Connect establishes a client connection, retrying per the config before
// giving up. Counter updates rely on retryable writes staying enabled.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, error) {
	for range cfg.RetryAttempts {
		client, err := mongo.Connect(
			options.Client().
				ApplyURI(cfg.ConnectionURL).
				SetConnectTimeout(cfg.ConnectTimeout).
				SetMaxPoolSize(cfg.MaxPoolSize).
				SetMinPoolSize(cfg.MinPoolSize).
				SetMaxConnIdleTime(cfg.MaxConnIdleTime).
				SetRetryWrites(true).
				SetRetryReads(true),
		)
		if err == nil {
			if err := client.Ping(ctx, nil); err == nil {
				return client, nil
			}
			_ = client.Disconnect(ctx)
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrFailedToConnect, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, ErrFailedToConnect
}

// ConnectDatabase connects and returns the configured database handle.
func ConnectDatabase(ctx context.Context, cfg Config) (*mongo.Database, error) {
	client, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client.Database(cfg.Database), nil
}

// Healthcheck returns a probe suitable for readiness endpoints.
func Healthcheck(client *mongo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx, nil); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
