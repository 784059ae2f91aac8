package subscription

import (
	"context"
	"time"
)

// BillingProvider defines the minimal interface for payment provider
// integrations. The provider handles all payment complexity through hosted
// checkouts and customer portals; this engine only consumes the subscription
// state its webhooks report.
type BillingProvider interface {
	// CreateCheckoutLink creates a hosted checkout session.
	CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error)

	// GetCustomerPortalLink returns a temporary link to the customer portal
	// where users can update payment methods, cancel, or change plans.
	GetCustomerPortalLink(ctx context.Context, sub *Subscription) (*PortalLink, error)

	// ParseWebhook validates and parses incoming webhook data.
	// Must validate the signature to prevent webhook spoofing.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error)
}

// CheckoutRequest contains data needed to create a checkout session.
type CheckoutRequest struct {
	PriceID    string // provider's price identifier
	CustomerID string // our internal user ID
	Email      string // optional billing email
	SuccessURL string
	CancelURL  string
}

// CheckoutLink represents a hosted checkout session.
type CheckoutLink struct {
	URL       string
	SessionID string
	ExpiresAt time.Time
}

// PortalLink represents a customer portal session.
type PortalLink struct {
	URL              string
	CancelURL        string
	UpdatePaymentURL string
	ExpiresAt        time.Time
}

// WebhookEvent represents a normalized webhook event from the billing provider.
type WebhookEvent struct {
	Type           EventType
	ProviderEvent  string // original provider event name
	SubscriptionID string // provider's subscription ID
	CustomerID     string // our user ID from metadata
	Status         string // provider-reported subscription status
	PriceID        string // the price they subscribed to
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
	Raw            map[string]any
}

// EventType represents the normalized billing event type.
type EventType string

const (
	EventSubscriptionCreated  EventType = "subscription_created"
	EventSubscriptionUpdated  EventType = "subscription_updated"
	EventSubscriptionCanceled EventType = "subscription_canceled"
	EventSubscriptionResumed  EventType = "subscription_resumed"

	EventPaymentSucceeded EventType = "payment_succeeded"
	EventPaymentFailed    EventType = "payment_failed"
)
