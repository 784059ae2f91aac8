// Package subscription owns the lifecycle record of a user's commercial
// relationship: plan, status, billing period, trial window, and cancellation
// intent.
//
// Records are created lazily on first access with a 7-day free-tier trial and
// a one-month billing window anchored to creation time. Cancellation is
// deferred: it sets CancelAtPeriodEnd and leaves plan and status untouched
// until the billing provider's webhook reports period expiry.
//
// The billing provider (Paddle) is treated as an external collaborator:
// checkout and portal flows happen on its hosted pages, and only the
// subscription-state side effects of its webhooks are applied here.
//
// Basic usage:
//
//	store := subscription.NewMongoStore(db)
//	svc := subscription.NewService(store, plan.DefaultCatalog(),
//	    subscription.WithProvider(paddleProvider),
//	    subscription.WithPlanMirror(usageStore),
//	    subscription.WithPremiumPrice(subscription.BillingIntervalMonth, "pri_monthly"),
//	)
//
//	sub, err := svc.GetOrCreate(ctx, userID)
//	if sub.IsPremium() {
//	    // skip quota checks
//	}
//
// All timestamps are UTC instants; calendar math elsewhere in the engine
// uses UTC as the single reference timezone.
package subscription
