package throttle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps daily counters in Redis. The calendar day is part of the
// key, so rollover needs no bookkeeping: yesterday's key simply stops being
// read and reaps itself via TTL.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) RedisStoreOption {
	return func(s *RedisStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewRedisStore creates a Store backed by the given Redis client.
// Panics if client is nil to fail fast during initialization.
func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	if client == nil {
		panic("throttle: redis client is required")
	}

	s := &RedisStore{
		client: client,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// keyTTL keeps keys around past midnight for debugging, then lets them expire.
const keyTTL = 48 * time.Hour

func (s *RedisStore) key(userID uuid.UUID, feature Feature) string {
	return fmt.Sprintf("throttle:%s:%s:%s", userID, feature, Day(s.now()))
}

func (s *RedisStore) UsageToday(ctx context.Context, userID uuid.UUID, feature Feature) (int64, error) {
	if userID == uuid.Nil {
		return 0, ErrInvalidUserID
	}
	if !feature.Valid() {
		return 0, ErrInvalidFeature
	}

	count, err := s.client.Get(ctx, s.key(userID, feature)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read daily throttle: %w", err)
	}
	return count, nil
}

func (s *RedisStore) Increment(ctx context.Context, userID uuid.UUID, feature Feature) (int64, error) {
	if userID == uuid.Nil {
		return 0, ErrInvalidUserID
	}
	if !feature.Valid() {
		return 0, ErrInvalidFeature
	}

	key := s.key(userID, feature)

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, keyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment daily throttle: %w", err)
	}
	return incr.Val(), nil
}
