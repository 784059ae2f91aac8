package throttle

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and offline deployments.
// It keeps the stored {date, count} record shape: a record whose date is not
// today reads as zero without being rewritten.
type MemoryStore struct {
	mu      sync.Mutex
	records map[recordKey]dayCount
	now     func() time.Time
}

type recordKey struct {
	userID  uuid.UUID
	feature Feature
}

type dayCount struct {
	date  string
	count int64
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithMemoryClock overrides the time source. Intended for tests.
func WithMemoryClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		records: make(map[recordKey]dayCount),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) UsageToday(ctx context.Context, userID uuid.UUID, feature Feature) (int64, error) {
	if userID == uuid.Nil {
		return 0, ErrInvalidUserID
	}
	if !feature.Valid() {
		return 0, ErrInvalidFeature
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[recordKey{userID, feature}]
	if !ok || rec.date != Day(s.now()) {
		return 0, nil
	}
	return rec.count, nil
}

func (s *MemoryStore) Increment(ctx context.Context, userID uuid.UUID, feature Feature) (int64, error) {
	if userID == uuid.Nil {
		return 0, ErrInvalidUserID
	}
	if !feature.Valid() {
		return 0, ErrInvalidFeature
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey{userID, feature}
	today := Day(s.now())

	rec := s.records[key]
	if rec.date != today {
		rec = dayCount{date: today}
	}
	rec.count++
	s.records[key] = rec
	return rec.count, nil
}
