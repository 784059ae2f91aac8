package usage

import (
	"context"

	"github.com/google/uuid"

	"github.com/platefulapp/plateful/pkg/plan"
)

// Delta names the counters an increment or decrement touches.
// Zero fields leave their counters unchanged.
type Delta struct {
	RecipesGenerated int64
	PhotoAnalyses    int64
	ChatMessages     int64
	SavedRecipes     int64
	FridgeItems      int64
	Habits           int64
	Routines         int64
}

// IsZero reports whether the delta touches no counter.
func (d Delta) IsZero() bool {
	return d == Delta{}
}

// Counter names an absolute counter for reconciliation writes.
type Counter string

const (
	CounterSavedRecipes Counter = "saved_recipes"
	CounterFridgeItems  Counter = "fridge_items"
	CounterHabits       Counter = "habits"
	CounterRoutines     Counter = "routines"
)

// Store owns the per-user usage record.
//
// Implementations must apply Increment and Decrement as atomic deltas against
// the persisted value, never as read-modify-write from a cached snapshot, so
// concurrent requests cannot lose updates. GetOrCreate performs the lazy
// monthly rollover before returning, so callers never observe stale monthly
// counters.
type Store interface {
	// GetOrCreate returns the user's usage record, creating it with zeroed
	// counters if absent, and zeroing the monthly counters first if the
	// calendar month has rolled over since LastResetAt.
	GetOrCreate(ctx context.Context, userID uuid.UUID, tier plan.Tier) (*Limits, error)

	// Increment atomically adds the delta to the named counters, creating
	// the record if absent. A tracker call may be the record's first touch;
	// counters must never be dropped because the read path ran second.
	Increment(ctx context.Context, userID uuid.UUID, d Delta) error

	// Decrement atomically subtracts the delta, flooring every counter at
	// zero. An absent record is created zeroed, the floor of any decrement.
	Decrement(ctx context.Context, userID uuid.UUID, d Delta) error

	// SetAbsolute overwrites one absolute counter. Used by external
	// reconciliation passes to repair drift, e.g. after a bulk import.
	SetAbsolute(ctx context.Context, userID uuid.UUID, counter Counter, value int64) error

	// UpdatePlan changes the mirrored plan field only. It intentionally does
	// not reset any counters: a mid-month upgrade must not grant a second
	// free-tier quota before downgrading back.
	UpdatePlan(ctx context.Context, userID uuid.UUID, tier plan.Tier) error

	// Delete removes the usage record. Only used on account deletion.
	Delete(ctx context.Context, userID uuid.UUID) error
}
