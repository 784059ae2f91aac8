package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/platefulapp/plateful/pkg/plan"
)

// PlanMirror keeps a duplicated plan field in another store consistent when
// the subscription's plan changes. The usage-counter store implements it.
type PlanMirror interface {
	UpdatePlan(ctx context.Context, userID uuid.UUID, tier plan.Tier) error
}

// Service owns the subscription lifecycle record.
//
// Records are created lazily on first access with a free-tier trial and are
// never hard-deleted except on account deletion. Status transitions happen
// only through the update path driven by the billing provider's webhooks.
type Service struct {
	store     Store
	catalog   *plan.Catalog
	provider  BillingProvider
	mirror    PlanMirror
	prices    map[BillingInterval]string
	tiers     map[string]plan.Tier
	intervals map[string]BillingInterval
	log       *slog.Logger
	now       func() time.Time
}

// NewService creates a subscription service.
// Panics if store or catalog is nil to fail fast during initialization.
func NewService(store Store, catalog *plan.Catalog, opts ...ServiceOption) *Service {
	if store == nil {
		panic("subscription: Store is required")
	}
	if catalog == nil {
		panic("subscription: plan.Catalog is required")
	}

	s := &Service{
		store:     store,
		catalog:   catalog,
		prices:    make(map[BillingInterval]string),
		tiers:     make(map[string]plan.Tier),
		intervals: make(map[string]BillingInterval),
		log:       slog.Default(),
		now:       func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// GetOrCreate returns the user's subscription, lazily initializing a
// free-tier trial record on first access. Never returns ErrNotFound.
func (s *Service) GetOrCreate(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}

	sub, err := s.store.Get(ctx, userID)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := s.now()
	trialEnd := now.AddDate(0, 0, s.catalog.TrialDays(plan.TierFree))

	sub = &Subscription{
		UserID:             userID,
		Plan:               plan.TierFree,
		Status:             StatusTrialing,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 1, 0),
		TrialEndsAt:        &trialEnd,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.store.Save(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to initialize subscription: %w", err)
	}

	s.log.InfoContext(ctx, "subscription created",
		slog.String("user_id", userID.String()),
		slog.Time("trial_ends_at", trialEnd))

	return sub, nil
}

// UpdateParams carries a partial update. Nil fields are left unchanged.
type UpdateParams struct {
	Plan               *plan.Tier
	Status             *Status
	BillingInterval    *BillingInterval
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelAtPeriodEnd  *bool
	TrialEndsAt        *time.Time
	ClearTrialEnd      bool
	ProviderCustomerID *string
	ProviderSubID      *string
}

// Update applies a partial update to an existing subscription.
// Calling Update for a user with no record is a programmer error; the store's
// ErrNotFound propagates unchanged.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, params UpdateParams) (*Subscription, error) {
	sub, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	planChanged := false
	if params.Plan != nil && *params.Plan != sub.Plan {
		sub.Plan = *params.Plan
		planChanged = true
	}
	if params.Status != nil {
		sub.Status = *params.Status
	}
	if params.BillingInterval != nil {
		sub.BillingInterval = *params.BillingInterval
	}
	if params.CurrentPeriodStart != nil {
		sub.CurrentPeriodStart = *params.CurrentPeriodStart
	}
	if params.CurrentPeriodEnd != nil {
		sub.CurrentPeriodEnd = *params.CurrentPeriodEnd
	}
	if params.CancelAtPeriodEnd != nil {
		sub.CancelAtPeriodEnd = *params.CancelAtPeriodEnd
	}
	if params.TrialEndsAt != nil {
		sub.TrialEndsAt = params.TrialEndsAt
	}
	if params.ClearTrialEnd {
		sub.TrialEndsAt = nil
	}
	if params.ProviderCustomerID != nil {
		sub.ProviderCustomerID = *params.ProviderCustomerID
	}
	if params.ProviderSubID != nil {
		sub.ProviderSubID = *params.ProviderSubID
	}
	sub.UpdatedAt = s.now()

	if err := s.store.Save(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	if planChanged {
		s.syncPlanMirror(ctx, userID, sub.Plan)
	}

	return sub, nil
}

// Cancel marks the subscription for cancellation at period end.
// The subscription remains usable until CurrentPeriodEnd; the status flips
// only when the billing provider reports period expiry.
func (s *Service) Cancel(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	sub, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	sub.CancelAtPeriodEnd = true
	sub.UpdatedAt = s.now()

	if err := s.store.Save(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}

	s.log.InfoContext(ctx, "subscription cancellation scheduled",
		slog.String("user_id", userID.String()),
		slog.Time("period_end", sub.CurrentPeriodEnd))

	return sub, nil
}

// Reactivate clears a pending cancellation.
func (s *Service) Reactivate(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	sub, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	sub.CancelAtPeriodEnd = false
	sub.UpdatedAt = s.now()

	if err := s.store.Save(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to reactivate subscription: %w", err)
	}

	return sub, nil
}

// Delete removes the subscription record. Only used on account deletion.
func (s *Service) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.store.Delete(ctx, userID)
}

// CreateCheckoutLink generates a hosted checkout link for upgrading the user
// to the premium tier on the given billing interval.
func (s *Service) CreateCheckoutLink(ctx context.Context, userID uuid.UUID, interval BillingInterval, opts CheckoutOptions) (*CheckoutLink, error) {
	if s.provider == nil {
		return nil, ErrNoProvider
	}

	priceID, ok := s.prices[interval]
	if !ok {
		return nil, ErrPriceNotMapped
	}

	// Ensure the record exists so the webhook has something to update.
	if _, err := s.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	return s.provider.CreateCheckoutLink(ctx, CheckoutRequest{
		PriceID:    priceID,
		CustomerID: userID.String(),
		Email:      opts.Email,
		SuccessURL: opts.SuccessURL,
		CancelURL:  opts.CancelURL,
	})
}

// GetCustomerPortalLink returns a link to the billing provider's portal.
func (s *Service) GetCustomerPortalLink(ctx context.Context, userID uuid.UUID) (*PortalLink, error) {
	if s.provider == nil {
		return nil, ErrNoProvider
	}

	sub, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if sub.ProviderSubID == "" {
		return nil, ErrNoPortalCustomer
	}

	return s.provider.GetCustomerPortalLink(ctx, sub)
}

// HandleWebhook processes an incoming webhook event from the billing provider
// and applies the subscription-state side effects it carries.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.provider == nil {
		return ErrNoProvider
	}

	event, err := s.provider.ParseWebhook(ctx, payload, signature)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(event.CustomerID)
	if err != nil {
		return fmt.Errorf("invalid user ID in webhook: %w", err)
	}

	s.log.InfoContext(ctx, "billing webhook received",
		slog.String("user_id", userID.String()),
		slog.String("event", event.ProviderEvent))

	switch event.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionResumed:
		return s.applySubscriptionEvent(ctx, userID, event)

	case EventSubscriptionCanceled:
		// The provider reports this at actual period expiry; only now do
		// plan and status change.
		free := plan.TierFree
		canceled := StatusCanceled
		cancelDone := false
		_, err := s.Update(ctx, userID, UpdateParams{
			Plan:              &free,
			Status:            &canceled,
			CancelAtPeriodEnd: &cancelDone,
			ClearTrialEnd:     true,
		})
		return err

	case EventPaymentFailed:
		pastDue := StatusPastDue
		_, err := s.Update(ctx, userID, UpdateParams{Status: &pastDue})
		if errors.Is(err, ErrNotFound) {
			// Payment failure for a user we never saw; nothing to flag.
			return nil
		}
		return err

	case EventPaymentSucceeded:
		active := StatusActive
		_, err := s.Update(ctx, userID, UpdateParams{Status: &active})
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	return nil
}

func (s *Service) applySubscriptionEvent(ctx context.Context, userID uuid.UUID, event *WebhookEvent) error {
	// Created events may arrive for users whose lazy record does not exist yet.
	sub, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}

	params := UpdateParams{}

	if event.PriceID != "" {
		tier, ok := s.tiers[event.PriceID]
		if !ok {
			return errors.Join(ErrUnknownPrice, fmt.Errorf("price %q", event.PriceID))
		}
		params.Plan = &tier
		if interval, ok := s.intervals[event.PriceID]; ok {
			params.BillingInterval = &interval
		}
	}

	if event.Status != "" {
		status := mapProviderStatus(event.Status)
		params.Status = &status
		if status != StatusTrialing {
			params.ClearTrialEnd = true
		}
	}
	if event.SubscriptionID != "" {
		params.ProviderSubID = &event.SubscriptionID
	}
	if event.PeriodStart != nil {
		params.CurrentPeriodStart = event.PeriodStart
	}
	if event.PeriodEnd != nil {
		params.CurrentPeriodEnd = event.PeriodEnd
	}
	if event.Type == EventSubscriptionResumed && sub.CancelAtPeriodEnd {
		resumed := false
		params.CancelAtPeriodEnd = &resumed
	}

	_, err = s.Update(ctx, userID, params)
	return err
}

func (s *Service) syncPlanMirror(ctx context.Context, userID uuid.UUID, tier plan.Tier) {
	if s.mirror == nil {
		return
	}
	// Mirror drift is tolerable: the two records are independent documents
	// and no single action requires both to change atomically.
	if err := s.mirror.UpdatePlan(ctx, userID, tier); err != nil {
		s.log.ErrorContext(ctx, "failed to sync plan mirror",
			slog.String("user_id", userID.String()),
			slog.String("plan", string(tier)),
			slog.Any("error", err))
	}
}

// mapProviderStatus maps a provider-reported status to the internal Status.
func mapProviderStatus(providerStatus string) Status {
	switch strings.ToLower(providerStatus) {
	case "trialing":
		return StatusTrialing
	case "active":
		return StatusActive
	case "past_due":
		return StatusPastDue
	case "canceled", "cancelled":
		return StatusCanceled
	case "incomplete":
		return StatusIncomplete
	case "incomplete_expired", "expired":
		return StatusIncompleteExpired
	default:
		return Status(providerStatus)
	}
}
