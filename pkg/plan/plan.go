package plan

import (
	"errors"
	"fmt"
)

// Plan describes a commercial tier and its feature budgets.
// A budget of Unlimited (-1) means the feature is not metered for this tier.
type Plan struct {
	Tier      Tier               `yaml:"tier"`
	Name      string             `yaml:"name"`
	Limits    map[Feature]int64  `yaml:"limits"`
	TrialDays int                `yaml:"trial_days"`
}

// Catalog is the single source of truth for feature budgets.
// It is immutable after construction; thread-safety relies on that.
type Catalog struct {
	plans map[Tier]Plan
}

// NewCatalog builds a validated catalog from the given plans.
// A feature missing from any plan is a configuration error and fails
// construction rather than surfacing later as a runtime denial.
func NewCatalog(plans map[Tier]Plan) (*Catalog, error) {
	if err := validatePlans(plans); err != nil {
		return nil, err
	}
	return &Catalog{plans: plans}, nil
}

// Plan returns the plan definition for the given tier.
func (c *Catalog) Plan(tier Tier) (Plan, error) {
	p, ok := c.plans[tier]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return p, nil
}

// Limit returns the budget for a feature under the given tier.
func (c *Catalog) Limit(tier Tier, feature Feature) (int64, error) {
	p, ok := c.plans[tier]
	if !ok {
		return 0, ErrPlanNotFound
	}
	limit, ok := p.Limits[feature]
	if !ok {
		return 0, ErrUnknownFeature
	}
	return limit, nil
}

// TrialDays returns the trial length for the given tier, zero if unknown.
func (c *Catalog) TrialDays(tier Tier) int {
	return c.plans[tier].TrialDays
}

// UsagePercentage returns usage as a percentage of the limit, capped at 100.
// Unlimited budgets always report 0 since there is nothing to exhaust.
// Used only for display, never for gating.
func UsagePercentage(current, limit int64) int {
	if limit == Unlimited {
		return 0
	}
	if limit == 0 {
		return 100
	}
	return min(int((current*100)/limit), 100)
}

func validatePlans(plans map[Tier]Plan) error {
	if len(plans) == 0 {
		return errors.Join(ErrInvalidConfiguration, errors.New("catalog has no plans"))
	}

	for tier, p := range plans {
		if !tier.Valid() {
			return errors.Join(ErrInvalidConfiguration,
				fmt.Errorf("unknown tier %q", tier))
		}
		if p.Tier != tier {
			return errors.Join(ErrInvalidConfiguration,
				fmt.Errorf("tier mismatch: map key %s != plan.Tier %s", tier, p.Tier))
		}
		if p.TrialDays < 0 {
			return errors.Join(ErrInvalidConfiguration,
				fmt.Errorf("plan %s has negative trial days: %d", tier, p.TrialDays))
		}
		for _, feature := range AllFeatures {
			limit, ok := p.Limits[feature]
			if !ok {
				return errors.Join(ErrInvalidConfiguration,
					fmt.Errorf("plan %s is missing a budget for %s", tier, feature))
			}
			if limit < Unlimited {
				return errors.Join(ErrInvalidConfiguration,
					fmt.Errorf("plan %s has invalid budget %d for %s", tier, limit, feature))
			}
		}
	}
	return nil
}
