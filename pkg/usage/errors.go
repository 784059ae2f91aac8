package usage

import "errors"

var (
	ErrNotFound       = errors.New("usage record not found")
	ErrInvalidUserID  = errors.New("user ID is required")
	ErrUnknownCounter = errors.New("unknown absolute counter")
	ErrNegativeValue  = errors.New("counter value cannot be negative")
)
