package subscription

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/platefulapp/plateful/pkg/plan"
)

// Subscription is the commercial relationship record for one user.
// Each user has exactly one subscription, keyed by user ID.
type Subscription struct {
	UserID             uuid.UUID
	Plan               plan.Tier
	Status             Status
	BillingInterval    BillingInterval // empty until a paid interval is chosen
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CancelAtPeriodEnd  bool       // cancellation is deferred, never immediate
	TrialEndsAt        *time.Time // set only while trialing
	ProviderCustomerID string     // billing provider's customer ID, opaque
	ProviderSubID      string     // billing provider's subscription ID, opaque
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsPremium reports whether the user currently has paid entitlements.
// Deferred cancellation does not affect this until the billing provider
// reports period expiry.
func (s *Subscription) IsPremium() bool {
	return s.Plan == plan.TierPremium &&
		(s.Status == StatusActive || s.Status == StatusTrialing)
}

// IsInTrialAt reports whether the trial window is open at the given time.
func (s *Subscription) IsInTrialAt(now time.Time) bool {
	return s.Status == StatusTrialing && s.TrialEndsAt != nil && now.Before(*s.TrialEndsAt)
}

// IsInTrial reports whether the trial window is currently open.
func (s *Subscription) IsInTrial() bool {
	return s.IsInTrialAt(time.Now().UTC())
}

// TrialDaysRemainingAt returns the number of days remaining in the trial at a
// given time, rounding partial days up. Returns 0 once the trial has ended.
// Useful for testing with fixed time values.
func (s *Subscription) TrialDaysRemainingAt(now time.Time) int {
	if !s.IsInTrialAt(now) {
		return 0
	}

	remaining := s.TrialEndsAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours() / 24))
}

// TrialDaysRemaining returns the number of days remaining in the trial.
func (s *Subscription) TrialDaysRemaining() int {
	return s.TrialDaysRemainingAt(time.Now().UTC())
}
