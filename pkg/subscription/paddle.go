package subscription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
)

// PaddleConfig holds configuration for the Paddle billing provider.
type PaddleConfig struct {
	APIKey        string `env:"PADDLE_API_KEY,required"`
	WebhookSecret string `env:"PADDLE_WEBHOOK_SECRET,required"`
	Environment   string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
}

// PaddleProvider implements BillingProvider for Paddle.
type PaddleProvider struct {
	client   *paddle.SDK
	verifier *paddle.WebhookVerifier
}

// NewPaddleProvider creates a new Paddle billing provider.
func NewPaddleProvider(config PaddleConfig) (*PaddleProvider, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if config.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	var client *paddle.SDK
	var err error

	switch strings.ToLower(config.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(config.APIKey)
	case "production", "":
		client, err = paddle.New(config.APIKey)
	default:
		return nil, errors.Join(ErrInvalidEnvironment, fmt.Errorf("environment %q", config.Environment))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle client: %w", err)
	}

	return &PaddleProvider{
		client:   client,
		verifier: paddle.NewWebhookVerifier(config.WebhookSecret),
	}, nil
}

// CreateCheckoutLink creates a hosted checkout session in Paddle.
func (p *PaddleProvider) CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error) {
	if req.PriceID == "" {
		return nil, errors.New("price ID is required")
	}
	if req.CustomerID == "" {
		return nil, errors.New("customer ID is required")
	}

	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  req.PriceID,
		Quantity: 1,
	})

	transactionReq := &paddle.CreateTransactionRequest{
		Items: []paddle.CreateTransactionItems{*item},
		CustomData: paddle.CustomData{
			"user_id": req.CustomerID,
		},
	}

	if req.Email != "" {
		transactionReq.CustomData["email"] = req.Email
	}
	if req.SuccessURL != "" {
		transactionReq.Checkout = &paddle.TransactionCheckout{
			URL: paddle.PtrTo(req.SuccessURL),
		}
	}

	transaction, err := p.client.TransactionsClient.CreateTransaction(ctx, transactionReq)
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle transaction: %w", err)
	}

	if transaction.Checkout == nil || transaction.Checkout.URL == nil {
		return nil, ErrNoCheckoutURL
	}

	return &CheckoutLink{
		URL:       *transaction.Checkout.URL,
		SessionID: transaction.ID,
		ExpiresAt: time.Now().Add(24 * time.Hour), // Paddle checkout links expire in 24 hours
	}, nil
}

// GetCustomerPortalLink returns a link to Paddle's customer portal.
func (p *PaddleProvider) GetCustomerPortalLink(ctx context.Context, sub *Subscription) (*PortalLink, error) {
	if sub == nil || sub.ProviderSubID == "" {
		return nil, ErrNoPortalCustomer
	}

	customerID := sub.ProviderCustomerID
	if customerID == "" {
		customerID = sub.UserID.String()
	}

	portalSession, err := p.client.CustomerPortalSessionsClient.CreateCustomerPortalSession(ctx,
		&paddle.CreateCustomerPortalSessionRequest{
			CustomerID:      customerID,
			SubscriptionIDs: []string{sub.ProviderSubID},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle customer portal session: %w", err)
	}

	link := &PortalLink{
		URL:       portalSession.URLs.General.Overview,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}

	for _, subURL := range portalSession.URLs.Subscriptions {
		if subURL.ID == sub.ProviderSubID {
			link.CancelURL = subURL.CancelSubscription
			link.UpdatePaymentURL = subURL.UpdateSubscriptionPaymentMethod
			break
		}
	}

	if link.URL == "" {
		return nil, ErrNoPortalURL
	}

	return link, nil
}

// ParseWebhook validates and parses incoming webhook data from Paddle.
func (p *PaddleProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/webhook", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request for verification: %w", err)
	}
	req.Header.Set("Paddle-Signature", signature)

	valid, err := p.verifier.Verify(req)
	if err != nil {
		return nil, fmt.Errorf("webhook verification error: %w", err)
	}
	if !valid {
		return nil, ErrWebhookVerificationFailed
	}

	var paddleEvent struct {
		EventID   string         `json:"event_id"`
		EventType string         `json:"event_type"`
		Data      map[string]any `json:"data"`
	}
	if err := json.Unmarshal(payload, &paddleEvent); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	event := &WebhookEvent{
		Type:          mapPaddleEventType(paddleEvent.EventType),
		ProviderEvent: paddleEvent.EventType,
		Raw:           paddleEvent.Data,
	}

	data := paddleEvent.Data

	if strings.HasPrefix(paddleEvent.EventType, "subscription.") {
		if subID, ok := data["id"].(string); ok {
			event.SubscriptionID = subID
		}
		if period, ok := data["current_billing_period"].(map[string]any); ok {
			event.PeriodStart = parsePaddleTime(period["starts_at"])
			event.PeriodEnd = parsePaddleTime(period["ends_at"])
		}
		if items, ok := data["items"].([]any); ok && len(items) > 0 {
			if item, ok := items[0].(map[string]any); ok {
				if price, ok := item["price"].(map[string]any); ok {
					if priceID, ok := price["id"].(string); ok {
						event.PriceID = priceID
					}
				}
			}
		}
	}

	if strings.HasPrefix(paddleEvent.EventType, "transaction.") {
		if subID, ok := data["subscription_id"].(string); ok {
			event.SubscriptionID = subID
		}
		if items, ok := data["items"].([]any); ok && len(items) > 0 {
			if item, ok := items[0].(map[string]any); ok {
				if priceID, ok := item["price_id"].(string); ok {
					event.PriceID = priceID
				}
			}
		}
	}

	if status, ok := data["status"].(string); ok {
		event.Status = status
	}
	if customData, ok := data["custom_data"].(map[string]any); ok {
		if userID, ok := customData["user_id"].(string); ok {
			event.CustomerID = userID
		}
	}

	return event, nil
}

func parsePaddleTime(v any) *time.Time {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

// mapPaddleEventType maps Paddle event types to internal EventType.
func mapPaddleEventType(paddleEvent string) EventType {
	switch paddleEvent {
	case "subscription.created", "transaction.completed":
		return EventSubscriptionCreated
	case "subscription.updated":
		return EventSubscriptionUpdated
	case "subscription.canceled":
		return EventSubscriptionCanceled
	case "subscription.resumed":
		return EventSubscriptionResumed
	case "transaction.payment_succeeded":
		return EventPaymentSucceeded
	case "transaction.payment_failed":
		return EventPaymentFailed
	default:
		return EventType(paddleEvent)
	}
}
