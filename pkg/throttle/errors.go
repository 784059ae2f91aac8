package throttle

import "errors"

var (
	ErrInvalidFeature = errors.New("feature is not covered by the daily throttle")
	ErrInvalidUserID  = errors.New("user ID is required")
)
