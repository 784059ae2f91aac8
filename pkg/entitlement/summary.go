package entitlement

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/platefulapp/plateful/pkg/plan"
)

// meteredFeatures lists features gated by a usage counter, in display order.
var meteredFeatures = []plan.Feature{
	plan.FeatureRecipeGeneration,
	plan.FeaturePhotoAnalysis,
	plan.FeatureChatMessage,
	plan.FeatureRecipeSave,
	plan.FeatureFridgeItem,
	plan.FeatureHabit,
	plan.FeatureRoutine,
}

// SubscriptionSummary is the read-only subscription projection exposed to
// the presentation layer.
type SubscriptionSummary struct {
	Plan               plan.Tier `json:"plan"`
	Status             string    `json:"status"`
	IsPremium          bool      `json:"is_premium"`
	IsInTrial          bool      `json:"is_in_trial"`
	TrialDaysRemaining int       `json:"trial_days_remaining"`
	CurrentPeriodEnd   time.Time `json:"current_period_end"`
	CancelAtPeriodEnd  bool      `json:"cancel_at_period_end"`
}

// Summary is the full usage projection for display. It never mutates
// counters beyond the lazy creation/rollover the stores already perform.
type Summary struct {
	Subscription SubscriptionSummary             `json:"subscription"`
	Features     map[plan.Feature]plan.UsageInfo `json:"features"`
}

// UsageSummary builds the per-feature usage projection plus the subscription
// snapshot, purely for display.
func (g *Gate) UsageSummary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	sub, err := g.subs.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	rec, err := g.usage.GetOrCreate(ctx, userID, sub.Plan)
	if err != nil {
		return nil, err
	}

	features := make(map[plan.Feature]plan.UsageInfo, len(meteredFeatures))
	for _, feature := range meteredFeatures {
		limit, err := g.catalog.Limit(sub.Plan, feature)
		if err != nil {
			return nil, err
		}
		current, _ := rec.Count(feature)
		features[feature] = plan.UsageInfo{
			Current:    current,
			Limit:      limit,
			Percentage: plan.UsagePercentage(current, limit),
		}
	}

	return &Summary{
		Subscription: SubscriptionSummary{
			Plan:               sub.Plan,
			Status:             string(sub.Status),
			IsPremium:          sub.IsPremium(),
			IsInTrial:          sub.IsInTrial(),
			TrialDaysRemaining: sub.TrialDaysRemaining(),
			CurrentPeriodEnd:   sub.CurrentPeriodEnd,
			CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		},
		Features: features,
	}, nil
}
