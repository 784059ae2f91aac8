package subscription

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and offline deployments.
type MemoryStore struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]Subscription
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[uuid.UUID]Subscription)}
}

func (s *MemoryStore) Get(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	// Copy so callers cannot mutate stored state.
	out := sub
	if sub.TrialEndsAt != nil {
		t := *sub.TrialEndsAt
		out.TrialEndsAt = &t
	}
	return &out, nil
}

func (s *MemoryStore) Save(ctx context.Context, sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *sub
	if sub.TrialEndsAt != nil {
		t := *sub.TrialEndsAt
		stored.TrialEndsAt = &t
	}
	s.subs[sub.UserID] = stored
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.subs, userID)
	return nil
}
