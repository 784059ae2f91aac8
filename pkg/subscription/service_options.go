package subscription

import (
	"log/slog"
	"time"

	"github.com/platefulapp/plateful/pkg/plan"
)

// ServiceOption configures optional Service settings.
type ServiceOption func(*Service)

// WithProvider attaches a billing provider for checkout, portal and
// webhook handling. Without a provider those operations return ErrNoProvider.
func WithProvider(p BillingProvider) ServiceOption {
	return func(s *Service) { s.provider = p }
}

// WithPlanMirror registers the usage-counter store's plan mirror so that
// plan changes keep the duplicated plan field in sync.
func WithPlanMirror(m PlanMirror) ServiceOption {
	return func(s *Service) { s.mirror = m }
}

// WithPremiumPrice maps a billing interval to the provider's price ID for the
// premium tier. The reverse mapping resolves webhook price IDs back to tiers.
func WithPremiumPrice(interval BillingInterval, priceID string) ServiceOption {
	return func(s *Service) {
		s.prices[interval] = priceID
		s.tiers[priceID] = plan.TierPremium
		s.intervals[priceID] = interval
	}
}

// WithLogger sets the structured logger used for lifecycle events.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
