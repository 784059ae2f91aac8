package throttle_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefulapp/plateful/pkg/plan"
	"github.com/platefulapp/plateful/pkg/throttle"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	t.Run("increment returns the running count", func(t *testing.T) {
		t.Parallel()

		store := throttle.NewMemoryStore()
		userID := uuid.New()

		for i := int64(1); i <= 3; i++ {
			n, err := store.Increment(context.Background(), userID, throttle.FeatureChat)
			require.NoError(t, err)
			assert.Equal(t, i, n)
		}

		n, err := store.UsageToday(context.Background(), userID, throttle.FeatureChat)
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)
	})

	t.Run("features are counted independently", func(t *testing.T) {
		t.Parallel()

		store := throttle.NewMemoryStore()
		userID := uuid.New()

		_, err := store.Increment(context.Background(), userID, throttle.FeatureChat)
		require.NoError(t, err)

		n, err := store.UsageToday(context.Background(), userID, throttle.FeaturePhoto)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("yesterday's count reads as zero", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2026, 3, 15, 23, 30, 0, 0, time.UTC)
		store := throttle.NewMemoryStore(throttle.WithMemoryClock(func() time.Time { return now }))
		userID := uuid.New()

		_, err := store.Increment(context.Background(), userID, throttle.FeaturePhoto)
		require.NoError(t, err)

		now = now.Add(time.Hour) // midnight crossed

		n, err := store.UsageToday(context.Background(), userID, throttle.FeaturePhoto)
		require.NoError(t, err)
		assert.Zero(t, n)

		// The first increment of the new day starts a fresh count.
		n, err = store.Increment(context.Background(), userID, throttle.FeaturePhoto)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("input validation", func(t *testing.T) {
		t.Parallel()

		store := throttle.NewMemoryStore()

		_, err := store.UsageToday(context.Background(), uuid.Nil, throttle.FeatureChat)
		assert.ErrorIs(t, err, throttle.ErrInvalidUserID)

		_, err = store.Increment(context.Background(), uuid.New(), throttle.Feature("bogus"))
		assert.ErrorIs(t, err, throttle.ErrInvalidFeature)
	})
}

func TestLimits_For(t *testing.T) {
	t.Parallel()

	limits := throttle.DefaultLimits()

	assert.EqualValues(t, 20, limits.For(plan.TierFree, throttle.FeatureChat))
	assert.EqualValues(t, 5, limits.For(plan.TierFree, throttle.FeaturePhoto))
	assert.EqualValues(t, 300, limits.For(plan.TierPremium, throttle.FeatureChat))
	assert.EqualValues(t, 100, limits.For(plan.TierPremium, throttle.FeaturePhoto))

	// Unknown tiers fall back to the free ceilings.
	assert.EqualValues(t, 20, limits.For(plan.Tier("enterprise"), throttle.FeatureChat))
}

func TestDay(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2026-03-15", throttle.Day(time.Date(2026, 3, 15, 23, 59, 59, 0, time.UTC)))

	// Local-time instants are keyed by their UTC day.
	east := time.FixedZone("UTC+10", 10*3600)
	assert.Equal(t, "2026-03-15", throttle.Day(time.Date(2026, 3, 16, 8, 0, 0, 0, east)))
}
