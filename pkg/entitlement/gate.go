package entitlement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/platefulapp/plateful/pkg/plan"
	"github.com/platefulapp/plateful/pkg/subscription"
	"github.com/platefulapp/plateful/pkg/throttle"
	"github.com/platefulapp/plateful/pkg/usage"
)

// SubscriptionResolver yields the user's subscription, creating the lazy
// trial record on first access. *subscription.Service satisfies it.
type SubscriptionResolver interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*subscription.Subscription, error)
}

// Gate is the feature access evaluator: the read-only decision function that
// answers "may this user do X right now".
//
// A check runs an ordered list of budget evaluations: the plan quota
// (monthly or absolute counter against the plan limit table) first, then the
// daily throttle for the two high-frequency AI features. Premium bypasses
// the plan quota but not the throttle. Gate never mutates any counter;
// recording consumption is the Tracker's job.
type Gate struct {
	subs     SubscriptionResolver
	usage    usage.Store
	throttle throttle.Store
	catalog  *plan.Catalog
	daily    throttle.Limits
	log      *slog.Logger
}

// GateOption configures optional Gate settings.
type GateOption func(*Gate)

// WithDailyLimits overrides the built-in daily throttle table.
func WithDailyLimits(limits throttle.Limits) GateOption {
	return func(g *Gate) {
		if limits != nil {
			g.daily = limits
		}
	}
}

// WithLogger sets the structured logger used for denial events.
func WithLogger(log *slog.Logger) GateOption {
	return func(g *Gate) {
		if log != nil {
			g.log = log
		}
	}
}

// NewGate creates a feature access evaluator.
// Panics if any required collaborator is nil to fail fast during initialization.
func NewGate(subs SubscriptionResolver, usageStore usage.Store, throttleStore throttle.Store, catalog *plan.Catalog, opts ...GateOption) *Gate {
	if subs == nil {
		panic("entitlement: SubscriptionResolver is required")
	}
	if usageStore == nil {
		panic("entitlement: usage.Store is required")
	}
	if throttleStore == nil {
		panic("entitlement: throttle.Store is required")
	}
	if catalog == nil {
		panic("entitlement: plan.Catalog is required")
	}

	g := &Gate{
		subs:     subs,
		usage:    usageStore,
		throttle: throttleStore,
		catalog:  catalog,
		daily:    throttle.DefaultLimits(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check evaluates whether the user may perform the feature right now.
// The returned Decision carries the limit and current count needed for
// user-facing messaging. Store failures propagate as errors and the caller
// must fail closed: no action without a successful check.
func (g *Gate) Check(ctx context.Context, userID uuid.UUID, feature plan.Feature) (Decision, error) {
	sub, err := g.subs.GetOrCreate(ctx, userID)
	if err != nil {
		return Decision{}, err
	}

	// Budget checks run in a fixed order; the first denial wins.
	decision, err := g.checkPlanQuota(ctx, sub, feature)
	if err != nil || !decision.Allowed {
		g.logDenied(ctx, userID, feature, decision, err)
		return decision, err
	}

	if tf, ok := throttleFeature(feature); ok {
		throttled, err := g.checkDailyThrottle(ctx, sub, tf)
		if err != nil || !throttled.Allowed {
			g.logDenied(ctx, userID, feature, throttled, err)
			return throttled, err
		}
	}

	return decision, nil
}

// checkPlanQuota compares the gating counter against the plan limit table.
func (g *Gate) checkPlanQuota(ctx context.Context, sub *subscription.Subscription, feature plan.Feature) (Decision, error) {
	// Premium bypasses every monthly-quota and absolute-counter check.
	if sub.IsPremium() {
		return allow(plan.Unlimited, 0), nil
	}

	limit, err := g.catalog.Limit(sub.Plan, feature)
	if err != nil {
		return Decision{}, err
	}

	// Unbounded budgets short-circuit regardless of the counter, which also
	// covers premium table entries if the bypass above were ever skipped.
	if limit == plan.Unlimited {
		return allow(plan.Unlimited, 0), nil
	}

	rec, err := g.usage.GetOrCreate(ctx, sub.UserID, sub.Plan)
	if err != nil {
		return Decision{}, err
	}

	current, ok := rec.Count(feature)
	if !ok {
		return Decision{}, fmt.Errorf("%w: %s", ErrFeatureNotMetered, feature)
	}

	// The budget is a ceiling: reaching it exactly denies the next use.
	if current >= limit {
		return deny(limit, current, featureLabel(feature)+" limit reached", true), nil
	}

	return allow(limit, current), nil
}

// checkDailyThrottle applies the tier-based daily ceiling. It applies to
// premium users too, with a high ceiling.
func (g *Gate) checkDailyThrottle(ctx context.Context, sub *subscription.Subscription, feature throttle.Feature) (Decision, error) {
	tier := plan.TierFree
	if sub.IsPremium() {
		tier = plan.TierPremium
	}
	limit := g.daily.For(tier, feature)

	count, err := g.throttle.UsageToday(ctx, sub.UserID, feature)
	if err != nil {
		return Decision{}, err
	}

	if count >= limit {
		// An upgrade only helps if a higher tier has a higher ceiling.
		return deny(limit, count, "daily "+string(feature)+" limit reached", tier != plan.TierPremium), nil
	}

	return allow(limit, count), nil
}

func (g *Gate) logDenied(ctx context.Context, userID uuid.UUID, feature plan.Feature, d Decision, err error) {
	if err != nil || d.Allowed {
		return
	}
	g.log.InfoContext(ctx, "feature access denied",
		slog.String("user_id", userID.String()),
		slog.String("feature", string(feature)),
		slog.Int64("limit", d.Limit),
		slog.Int64("current", d.Current))
}

// throttleFeature maps a plan feature to its daily throttle counterpart.
func throttleFeature(feature plan.Feature) (throttle.Feature, bool) {
	switch feature {
	case plan.FeatureChatMessage:
		return throttle.FeatureChat, true
	case plan.FeaturePhotoAnalysis:
		return throttle.FeaturePhoto, true
	default:
		return "", false
	}
}

// featureLabel returns the user-facing name used in denial reasons.
func featureLabel(feature plan.Feature) string {
	switch feature {
	case plan.FeatureRecipeGeneration:
		return "recipe generation"
	case plan.FeaturePhotoAnalysis:
		return "photo analysis"
	case plan.FeatureChatMessage:
		return "AI chat"
	case plan.FeatureRecipeSave:
		return "saved recipe"
	case plan.FeatureFridgeItem:
		return "fridge item"
	case plan.FeatureHabit:
		return "habit"
	case plan.FeatureRoutine:
		return "routine"
	default:
		return string(feature)
	}
}
