package plan

import "errors"

var (
	ErrPlanNotFound         = errors.New("plan not found in catalog")
	ErrUnknownFeature       = errors.New("feature has no entry in plan limit table")
	ErrInvalidConfiguration = errors.New("invalid plan catalog configuration")
	ErrFailedToLoadCatalog  = errors.New("failed to load plan catalog")
)
