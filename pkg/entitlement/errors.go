package entitlement

import "errors"

var (
	// ErrFeatureNotMetered marks an attempt to gate a display-only budget.
	// This is a programmer error, not a runtime denial.
	ErrFeatureNotMetered = errors.New("feature is not gated by a usage counter")
)
