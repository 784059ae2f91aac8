package subscription

// Status represents the current state of a subscription lifecycle.
// Transitions are driven by the billing provider's webhook events; nothing in
// this package moves a status directly except the update path those events use.
type Status string

const (
	StatusTrialing          Status = "trialing"
	StatusActive            Status = "active"
	StatusCanceled          Status = "canceled"
	StatusPastDue           Status = "past_due"
	StatusIncomplete        Status = "incomplete"
	StatusIncompleteExpired Status = "incomplete_expired"
)

// BillingInterval represents the billing frequency of a paid subscription.
// Empty until a paid interval has been chosen.
type BillingInterval string

const (
	BillingIntervalMonth BillingInterval = "month"
	BillingIntervalYear  BillingInterval = "year"
)

// CheckoutOptions contains options for creating a checkout session.
type CheckoutOptions struct {
	Email      string // pre-fill billing email if known
	SuccessURL string // redirect after successful payment
	CancelURL  string // redirect if the customer backs out
}
