package usage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/platefulapp/plateful/pkg/plan"
)

// MemoryStore is an in-memory Store for tests and offline deployments.
// It keeps the same lazy-rollover and floor-at-zero semantics as the
// document-backed store.
type MemoryStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*Limits
	now     func() time.Time
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		records: make(map[uuid.UUID]*Limits),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ensure returns the user's record, creating it if absent. A record created
// by a tracker call starts on the free tier until the plan mirror syncs it.
// Callers must hold s.mu.
func (s *MemoryStore) ensure(userID uuid.UUID) *Limits {
	rec, ok := s.records[userID]
	if !ok {
		now := s.now()
		rec = &Limits{
			UserID:      userID,
			Plan:        plan.TierFree,
			LastResetAt: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		s.records[userID] = rec
	}
	return rec
}

func (s *MemoryStore) GetOrCreate(ctx context.Context, userID uuid.UUID, tier plan.Tier) (*Limits, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	rec, ok := s.records[userID]
	if !ok {
		rec = &Limits{
			UserID:      userID,
			Plan:        tier,
			LastResetAt: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		s.records[userID] = rec
	}

	if !SameCalendarMonth(rec.LastResetAt, now) {
		rec.RecipesGeneratedThisMonth = 0
		rec.PhotoAnalysesThisMonth = 0
		rec.ChatMessagesThisMonth = 0
		rec.LastResetAt = now
		rec.UpdatedAt = now
	}

	out := *rec
	return &out, nil
}

func (s *MemoryStore) Increment(ctx context.Context, userID uuid.UUID, d Delta) error {
	if userID == uuid.Nil {
		return ErrInvalidUserID
	}
	if d.IsZero() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.ensure(userID)
	rec.RecipesGeneratedThisMonth += d.RecipesGenerated
	rec.PhotoAnalysesThisMonth += d.PhotoAnalyses
	rec.ChatMessagesThisMonth += d.ChatMessages
	rec.TotalSavedRecipes += d.SavedRecipes
	rec.TotalFridgeItems += d.FridgeItems
	rec.TotalHabits += d.Habits
	rec.TotalRoutines += d.Routines
	rec.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) Decrement(ctx context.Context, userID uuid.UUID, d Delta) error {
	if userID == uuid.Nil {
		return ErrInvalidUserID
	}
	if d.IsZero() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.ensure(userID)
	rec.RecipesGeneratedThisMonth = max(0, rec.RecipesGeneratedThisMonth-d.RecipesGenerated)
	rec.PhotoAnalysesThisMonth = max(0, rec.PhotoAnalysesThisMonth-d.PhotoAnalyses)
	rec.ChatMessagesThisMonth = max(0, rec.ChatMessagesThisMonth-d.ChatMessages)
	rec.TotalSavedRecipes = max(0, rec.TotalSavedRecipes-d.SavedRecipes)
	rec.TotalFridgeItems = max(0, rec.TotalFridgeItems-d.FridgeItems)
	rec.TotalHabits = max(0, rec.TotalHabits-d.Habits)
	rec.TotalRoutines = max(0, rec.TotalRoutines-d.Routines)
	rec.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) SetAbsolute(ctx context.Context, userID uuid.UUID, counter Counter, value int64) error {
	if value < 0 {
		return ErrNegativeValue
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[userID]
	if !ok {
		return ErrNotFound
	}

	switch counter {
	case CounterSavedRecipes:
		rec.TotalSavedRecipes = value
	case CounterFridgeItems:
		rec.TotalFridgeItems = value
	case CounterHabits:
		rec.TotalHabits = value
	case CounterRoutines:
		rec.TotalRoutines = value
	default:
		return errors.Join(ErrUnknownCounter, fmt.Errorf("counter %q", counter))
	}
	rec.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) UpdatePlan(ctx context.Context, userID uuid.UUID, tier plan.Tier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[userID]
	if !ok {
		return ErrNotFound
	}
	rec.Plan = tier
	rec.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, userID)
	return nil
}
