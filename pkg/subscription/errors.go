package subscription

import "errors"

var (
	ErrNotFound      = errors.New("subscription not found")
	ErrInvalidUserID = errors.New("user ID is required")

	ErrNoProvider       = errors.New("no billing provider configured")
	ErrPriceNotMapped   = errors.New("no price configured for billing interval")
	ErrUnknownPrice     = errors.New("webhook price ID maps to no known tier")
	ErrNoPortalCustomer = errors.New("no provider customer to open a portal for")

	// Provider-specific errors surfaced by the Paddle adapter.
	ErrMissingAPIKey             = errors.New("billing provider API key is required")
	ErrMissingWebhookSecret      = errors.New("billing provider webhook secret is required")
	ErrInvalidEnvironment        = errors.New("invalid billing provider environment")
	ErrWebhookVerificationFailed = errors.New("webhook signature verification failed")
	ErrNoCheckoutURL             = errors.New("no checkout URL returned from provider")
	ErrNoPortalURL               = errors.New("no portal URL returned from provider")
)
