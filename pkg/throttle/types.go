package throttle

import (
	"time"

	"github.com/platefulapp/plateful/pkg/plan"
)

// Feature names the two high-frequency AI features the daily throttle covers.
// The throttle is a second, independent budget layered on top of the monthly
// quota, so burst abuse can be stopped even with monthly headroom.
type Feature string

const (
	FeatureChat  Feature = "chat"
	FeaturePhoto Feature = "photo"
)

// Valid reports whether the feature is covered by the throttle.
func (f Feature) Valid() bool {
	return f == FeatureChat || f == FeaturePhoto
}

// Limits maps a tier to its per-feature daily ceilings. The table is coarser
// than the plan limit table on purpose: it keys on tier only.
type Limits map[plan.Tier]map[Feature]int64

// For returns the daily ceiling for a tier and feature, falling back to the
// free tier for unknown tiers.
func (l Limits) For(tier plan.Tier, feature Feature) int64 {
	ceilings, ok := l[tier]
	if !ok {
		ceilings = l[plan.TierFree]
	}
	return ceilings[feature]
}

// DefaultLimits returns the built-in throttle table. Premium users stay
// subject to the throttle with a deliberately high ceiling; this is an
// explicit policy decision, not an oversight.
func DefaultLimits() Limits {
	return Limits{
		plan.TierFree: {
			FeatureChat:  20,
			FeaturePhoto: 5,
		},
		plan.TierPremium: {
			FeatureChat:  300,
			FeaturePhoto: 100,
		},
	}
}

// Day returns the calendar day of t in UTC, the engine's reference timezone.
// Day-granularity only; time of day is discarded.
func Day(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
