package entitlement

import "github.com/platefulapp/plateful/pkg/plan"

// Decision is the outcome of a feature access check. A denial is a routine
// business outcome carried as data, never as an error.
type Decision struct {
	Allowed bool `json:"allowed"`

	// Limit and Current describe the budget the decision was made against.
	// Limit is plan.Unlimited (-1) when no finite budget applies.
	Limit   int64 `json:"limit"`
	Current int64 `json:"current"`

	// Remaining is Limit-Current, or plan.Unlimited when unbounded.
	Remaining int64 `json:"remaining"`

	// Reason is a user-facing explanation, set only on denial.
	Reason string `json:"reason,omitempty"`

	// UpgradeRequired tells the caller that a plan upgrade would lift the
	// denial. False when even premium would be throttled.
	UpgradeRequired bool `json:"upgrade_required,omitempty"`
}

func allow(limit, current int64) Decision {
	remaining := plan.Unlimited
	if limit != plan.Unlimited {
		remaining = limit - current
	}
	return Decision{
		Allowed:   true,
		Limit:     limit,
		Current:   current,
		Remaining: remaining,
	}
}

func deny(limit, current int64, reason string, upgradeRequired bool) Decision {
	return Decision{
		Allowed:         false,
		Limit:           limit,
		Current:         current,
		Remaining:       0,
		Reason:          reason,
		UpgradeRequired: upgradeRequired,
	}
}
