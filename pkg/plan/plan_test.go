package plan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefulapp/plateful/pkg/plan"
)

func TestNewCatalog_Validation(t *testing.T) {
	t.Parallel()

	t.Run("accepts the default plans", func(t *testing.T) {
		t.Parallel()

		c, err := plan.NewCatalog(plan.DefaultPlans())
		require.NoError(t, err)
		assert.NotNil(t, c)
	})

	t.Run("rejects empty catalog", func(t *testing.T) {
		t.Parallel()

		_, err := plan.NewCatalog(map[plan.Tier]plan.Plan{})
		assert.ErrorIs(t, err, plan.ErrInvalidConfiguration)
	})

	t.Run("rejects unknown tier", func(t *testing.T) {
		t.Parallel()

		plans := plan.DefaultPlans()
		plans["gold"] = plan.Plan{Tier: "gold", Limits: plans[plan.TierFree].Limits}

		_, err := plan.NewCatalog(plans)
		assert.ErrorIs(t, err, plan.ErrInvalidConfiguration)
	})

	t.Run("rejects tier mismatch between key and plan", func(t *testing.T) {
		t.Parallel()

		plans := plan.DefaultPlans()
		p := plans[plan.TierFree]
		p.Tier = plan.TierPremium
		plans[plan.TierFree] = p

		_, err := plan.NewCatalog(plans)
		assert.ErrorIs(t, err, plan.ErrInvalidConfiguration)
	})

	t.Run("rejects missing feature budget", func(t *testing.T) {
		t.Parallel()

		plans := plan.DefaultPlans()
		delete(plans[plan.TierFree].Limits, plan.FeatureRecipeGeneration)

		_, err := plan.NewCatalog(plans)
		assert.ErrorIs(t, err, plan.ErrInvalidConfiguration)
	})

	t.Run("rejects negative trial days", func(t *testing.T) {
		t.Parallel()

		plans := plan.DefaultPlans()
		p := plans[plan.TierFree]
		p.TrialDays = -1
		plans[plan.TierFree] = p

		_, err := plan.NewCatalog(plans)
		assert.ErrorIs(t, err, plan.ErrInvalidConfiguration)
	})

	t.Run("rejects budget below the unlimited sentinel", func(t *testing.T) {
		t.Parallel()

		plans := plan.DefaultPlans()
		plans[plan.TierFree].Limits[plan.FeatureHabit] = -7

		_, err := plan.NewCatalog(plans)
		assert.ErrorIs(t, err, plan.ErrInvalidConfiguration)
	})
}

func TestCatalog_Limit(t *testing.T) {
	t.Parallel()

	catalog := plan.DefaultCatalog()

	t.Run("returns free tier budget", func(t *testing.T) {
		t.Parallel()

		limit, err := catalog.Limit(plan.TierFree, plan.FeatureRecipeGeneration)
		require.NoError(t, err)
		assert.Equal(t, int64(10), limit)
	})

	t.Run("premium is unbounded", func(t *testing.T) {
		t.Parallel()

		limit, err := catalog.Limit(plan.TierPremium, plan.FeatureRecipeGeneration)
		require.NoError(t, err)
		assert.Equal(t, plan.Unlimited, limit)
	})

	t.Run("unknown tier", func(t *testing.T) {
		t.Parallel()

		_, err := catalog.Limit("gold", plan.FeatureRecipeGeneration)
		assert.ErrorIs(t, err, plan.ErrPlanNotFound)
	})

	t.Run("unknown feature", func(t *testing.T) {
		t.Parallel()

		_, err := catalog.Limit(plan.TierFree, "teleportation")
		assert.ErrorIs(t, err, plan.ErrUnknownFeature)
	})
}

func TestUsagePercentage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current int64
		limit   int64
		want    int
	}{
		{"unlimited is always zero", 9000, plan.Unlimited, 0},
		{"zero limit is exhausted", 0, 0, 100},
		{"half used", 5, 10, 50},
		{"capped at one hundred", 25, 10, 100},
		{"exactly at limit", 10, 10, 100},
		{"nothing used", 0, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, plan.UsagePercentage(tt.current, tt.limit))
		})
	}
}

func TestTrialDays(t *testing.T) {
	t.Parallel()

	catalog := plan.DefaultCatalog()
	assert.Equal(t, plan.DefaultTrialDays, catalog.TrialDays(plan.TierFree))
	assert.Equal(t, 0, catalog.TrialDays(plan.TierPremium))
}
