package entitlement

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/platefulapp/plateful/pkg/throttle"
	"github.com/platefulapp/plateful/pkg/usage"
)

// Tracker is the write side of the engine: one call per mutating domain
// event, always invoked after the underlying create/delete succeeds, never
// before. Trackers record consumption; they never make allow/deny decisions.
// That separation lets a failed domain write abort without double-counting.
type Tracker struct {
	usage    usage.Store
	throttle throttle.Store
	log      *slog.Logger
}

// TrackerOption configures optional Tracker settings.
type TrackerOption func(*Tracker)

// WithTrackerLogger sets the structured logger.
func WithTrackerLogger(log *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		if log != nil {
			t.log = log
		}
	}
}

// NewTracker creates the usage tracker.
// Panics if a store is nil to fail fast during initialization.
func NewTracker(usageStore usage.Store, throttleStore throttle.Store, opts ...TrackerOption) *Tracker {
	if usageStore == nil {
		panic("entitlement: usage.Store is required")
	}
	if throttleStore == nil {
		panic("entitlement: throttle.Store is required")
	}

	t := &Tracker{
		usage:    usageStore,
		throttle: throttleStore,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TrackRecipeGeneration records one successful recipe generation.
func (t *Tracker) TrackRecipeGeneration(ctx context.Context, userID uuid.UUID) error {
	return t.usage.Increment(ctx, userID, usage.Delta{RecipesGenerated: 1})
}

// TrackPhotoAnalysis records one successful photo analysis against both the
// monthly quota and the daily throttle.
func (t *Tracker) TrackPhotoAnalysis(ctx context.Context, userID uuid.UUID) error {
	if err := t.usage.Increment(ctx, userID, usage.Delta{PhotoAnalyses: 1}); err != nil {
		return err
	}
	_, err := t.throttle.Increment(ctx, userID, throttle.FeaturePhoto)
	return err
}

// TrackAIChatMessage records one sent chat message against both the monthly
// quota and the daily throttle.
func (t *Tracker) TrackAIChatMessage(ctx context.Context, userID uuid.UUID) error {
	if err := t.usage.Increment(ctx, userID, usage.Delta{ChatMessages: 1}); err != nil {
		return err
	}
	_, err := t.throttle.Increment(ctx, userID, throttle.FeatureChat)
	return err
}

// TrackRecipeSave records a newly saved recipe.
func (t *Tracker) TrackRecipeSave(ctx context.Context, userID uuid.UUID) error {
	return t.usage.Increment(ctx, userID, usage.Delta{SavedRecipes: 1})
}

// TrackRecipeDelete records a deleted saved recipe.
func (t *Tracker) TrackRecipeDelete(ctx context.Context, userID uuid.UUID) error {
	return t.usage.Decrement(ctx, userID, usage.Delta{SavedRecipes: 1})
}

// TrackFridgeItemAdd records a newly added fridge item.
func (t *Tracker) TrackFridgeItemAdd(ctx context.Context, userID uuid.UUID) error {
	return t.usage.Increment(ctx, userID, usage.Delta{FridgeItems: 1})
}

// TrackFridgeItemDelete records a removed fridge item.
func (t *Tracker) TrackFridgeItemDelete(ctx context.Context, userID uuid.UUID) error {
	return t.usage.Decrement(ctx, userID, usage.Delta{FridgeItems: 1})
}

// TrackHabitCreate records a newly created habit.
func (t *Tracker) TrackHabitCreate(ctx context.Context, userID uuid.UUID) error {
	return t.usage.Increment(ctx, userID, usage.Delta{Habits: 1})
}

// TrackHabitDelete records a deleted habit.
func (t *Tracker) TrackHabitDelete(ctx context.Context, userID uuid.UUID) error {
	return t.usage.Decrement(ctx, userID, usage.Delta{Habits: 1})
}

// TrackRoutineCreate records a newly created routine.
func (t *Tracker) TrackRoutineCreate(ctx context.Context, userID uuid.UUID) error {
	return t.usage.Increment(ctx, userID, usage.Delta{Routines: 1})
}

// TrackRoutineDelete records a deleted routine.
func (t *Tracker) TrackRoutineDelete(ctx context.Context, userID uuid.UUID) error {
	return t.usage.Decrement(ctx, userID, usage.Delta{Routines: 1})
}
